package pricing

import (
	"errors"

	"openbook-quoter-go/market"
)

// ErrUnavailable 表示当前拿不到参考价；调用方应跳过本周期，不算致命。
var ErrUnavailable = errors.New("pricing: reference price unavailable")

// Resolver 参考价解析器。两种实现：自引用（用本市场盘口）
// 和 oracle（外部定价源缓存）。
type Resolver interface {
	// Resolve 返回 side 方向的参考价。
	Resolve(snap market.Snapshot, side market.Side) (float64, error)
}

// BookResolver 自引用：bid 用 best bid，ask 用 best ask，两个独立参考值。
type BookResolver struct{}

func (BookResolver) Resolve(snap market.Snapshot, side market.Side) (float64, error) {
	var p float64
	if side == market.SideBid {
		p = snap.BestBid
	} else {
		p = snap.BestAsk
	}
	if p <= 0 {
		return 0, ErrUnavailable
	}
	return p, nil
}

// OracleResolver 从缓存读单一外部参考价，两个方向同一个值。
// 缓存由带外轮询（Poller/Feed）填充；缓存未命中 ⇒ ErrUnavailable。
type OracleResolver struct {
	Cache  Cache
	Symbol string
}

func (o OracleResolver) Resolve(_ market.Snapshot, _ market.Side) (float64, error) {
	p, ok := o.Cache.Get(o.Symbol)
	if !ok {
		return 0, ErrUnavailable
	}
	return p, nil
}
