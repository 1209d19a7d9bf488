// Package sim 提供一个进程内模拟场所，供 dry-run 和集成测试使用：
// 提交的批次直接作用在内存盘口上，不经过任何网络。
package sim

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"openbook-quoter-go/market"
	"openbook-quoter-go/order"
)

// Venue 实现 BookQuery / BalanceQuery / Submitter。
// 外部行情（best bid/ask）由调用方驱动，own 挂单由提交的批次维护。
type Venue struct {
	MarketID   string
	OpenOrders string
	Log        *zap.Logger

	bestBid  float64
	bestAsk  float64
	balances map[string]float64
	resting  map[uint64]market.RestingOrder // client id → 本账户挂单
	txSeq    atomic.Uint64
}

func NewVenue(marketID, openOrders string, log *zap.Logger) *Venue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Venue{
		MarketID:   marketID,
		OpenOrders: openOrders,
		Log:        log,
		balances:   make(map[string]float64),
		resting:    make(map[uint64]market.RestingOrder),
	}
}

// SetQuotes 更新外部行情。
func (v *Venue) SetQuotes(bestBid, bestAsk float64) {
	v.bestBid, v.bestAsk = bestBid, bestAsk
}

// SetBalance 设定某个钱包的余额。
func (v *Venue) SetBalance(wallet string, amount float64) {
	v.balances[wallet] = amount
}

// RestingOrders 返回当前本账户挂单（拷贝）。
func (v *Venue) RestingOrders() []market.RestingOrder {
	res := make([]market.RestingOrder, 0, len(v.resting))
	for _, o := range v.resting {
		res = append(res, o)
	}
	return res
}

// GetBook 市场快照：外部行情 + 本账户挂单。
func (v *Venue) GetBook(_ context.Context, marketID string) (market.Snapshot, error) {
	if marketID != v.MarketID {
		return market.Snapshot{}, fmt.Errorf("sim: unknown market %s", marketID)
	}
	snap := market.Snapshot{
		MarketID: marketID,
		BestBid:  v.bestBid,
		BestAsk:  v.bestAsk,
		Ts:       time.Now(),
	}
	for _, o := range v.resting {
		snap.Orders = append(snap.Orders, o)
	}
	return snap, nil
}

// Balance 钱包余额查询。
func (v *Venue) Balance(_ context.Context, wallet string) (float64, error) {
	amount, ok := v.balances[wallet]
	if !ok {
		return 0, fmt.Errorf("sim: unknown wallet %s", wallet)
	}
	return amount, nil
}

// Submit 把批次按顺序应用到内存盘口：cancel 移除挂单，place 登记挂单。
// settle/consume/memo/优先费在模拟里都是 no-op。
func (v *Venue) Submit(_ context.Context, b order.Batch) (string, error) {
	for _, in := range b.Instructions {
		switch in.Kind {
		case order.KindCancelByClientID:
			delete(v.resting, in.ClientID)
		case order.KindPlaceOrder:
			v.resting[in.ClientID] = market.RestingOrder{
				Side:     in.Side,
				Owner:    v.OpenOrders,
				ClientID: in.ClientID,
				Price:    in.Price,
				Size:     in.Size,
			}
			v.Log.Info("sim order placed",
				zap.String("side", string(in.Side)),
				zap.Uint64("clientId", in.ClientID),
				zap.Float64("price", in.Price),
				zap.Float64("size", in.Size))
		}
	}
	return fmt.Sprintf("sim-tx-%d", v.txSeq.Add(1)), nil
}

var (
	_ market.BookQuery = (*Venue)(nil)
	_ order.Submitter  = (*Venue)(nil)
)
