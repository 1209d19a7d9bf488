package inventory

import (
	"context"
	"errors"
	"testing"
)

type fakeBalances struct {
	amounts map[string]float64
	fail    map[string]bool
}

func (f fakeBalances) Balance(_ context.Context, wallet string) (float64, error) {
	if f.fail[wallet] {
		return 0, errors.New("rpc timeout")
	}
	return f.amounts[wallet], nil
}

func newTestLeaner(b BalanceQuery) *Leaner {
	return NewLeaner(LeanConfig{
		BaseWallet:     "base-wallet",
		QuoteWallet:    "quote-wallet",
		BaseSymbol:     "MSOL",
		QuoteSymbol:    "USDC",
		QuoteSize:      2.8877,
		BaseThreshold:  2.8877,
		QuoteThreshold: 400,
		Factors:        map[string]float64{"MSOL": 0.5, "USDC": 0.5},
	}, b, nil)
}

func TestUpdate_QuoteStarvedLeansAsk(t *testing.T) {
	l := newTestLeaner(fakeBalances{amounts: map[string]float64{
		"quote-wallet": 400, // 恰好等于阈值也算紧张
		"base-wallet":  50,
	}})

	ch := l.Update(context.Background())
	if !ch.Ask || ch.Bid {
		t.Fatalf("want ask change only, got %+v", ch)
	}
	if l.AskSize() != 2.8877*0.5 {
		t.Fatalf("ask size = %v, want leaned %v", l.AskSize(), 2.8877*0.5)
	}
	if l.BidSize() != 2.8877 {
		t.Fatalf("bid size = %v, want full size", l.BidSize())
	}
}

func TestUpdate_HealthyBalancesFullSize(t *testing.T) {
	l := newTestLeaner(fakeBalances{amounts: map[string]float64{
		"quote-wallet": 400.01,
		"base-wallet":  50,
	}})
	ch := l.Update(context.Background())
	if ch.Ask || ch.Bid {
		t.Fatalf("no factor changed, got %+v", ch)
	}
	if l.AskSize() != 2.8877 || l.BidSize() != 2.8877 {
		t.Fatalf("sizes must equal configured size exactly: %v %v", l.AskSize(), l.BidSize())
	}
}

func TestUpdate_BaseStarvedLeansBid(t *testing.T) {
	l := newTestLeaner(fakeBalances{amounts: map[string]float64{
		"quote-wallet": 1000,
		"base-wallet":  1.5,
	}})
	ch := l.Update(context.Background())
	if !ch.Bid || ch.Ask {
		t.Fatalf("want bid change only, got %+v", ch)
	}
	if l.BidSize() != 2.8877*0.5 {
		t.Fatalf("bid size = %v", l.BidSize())
	}
}

func TestUpdate_FailedQueryRetainsFactor(t *testing.T) {
	b := fakeBalances{
		amounts: map[string]float64{"quote-wallet": 100, "base-wallet": 50},
		fail:    map[string]bool{},
	}
	l := newTestLeaner(b)
	l.Update(context.Background()) // quote 紧张，ask 系数降到 0.5

	// 之后 quote 查询失败：系数保持 0.5，不回到 1。
	b.fail["quote-wallet"] = true
	ch := l.Update(context.Background())
	if ch.Ask {
		t.Fatal("unknown balance must not change factor")
	}
	if l.AskFactor() != 0.5 {
		t.Fatalf("ask factor = %v, want retained 0.5", l.AskFactor())
	}
}

func TestUpdate_NoChangeWhenFactorStays(t *testing.T) {
	l := newTestLeaner(fakeBalances{amounts: map[string]float64{
		"quote-wallet": 100,
		"base-wallet":  50,
	}})
	if ch := l.Update(context.Background()); !ch.Ask {
		t.Fatal("first lean should report change")
	}
	// 同样的余额再更新一次：系数不变，不再触发重挂。
	if ch := l.Update(context.Background()); ch.Ask || ch.Bid {
		t.Fatalf("unchanged factor reported as change: %+v", ch)
	}
}

func TestFactor_Bounds(t *testing.T) {
	l := NewLeaner(LeanConfig{Factors: map[string]float64{"BAD": 1.7}}, fakeBalances{}, nil)
	if got := l.Factor("BAD"); got != DefaultLeanFactor {
		t.Fatalf("out-of-range factor should fall back to default, got %v", got)
	}
	if got := l.Factor("UNKNOWN"); got != DefaultLeanFactor {
		t.Fatalf("unconfigured asset factor = %v", got)
	}
}
