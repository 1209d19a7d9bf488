package market

import (
	"context"
	"time"
)

// Side 报价方向。
type Side string

const (
	SideBid Side = "BID"
	SideAsk Side = "ASK"
)

// Opposite 返回对手方向。
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// RestingOrder 盘口上的一笔挂单（含归属账户与 client id）。
type RestingOrder struct {
	Side     Side
	Owner    string
	ClientID uint64
	Price    float64
	Size     float64
}

// Snapshot 单次快照：最优买卖价 + 全部挂单。每个报价周期刷新一次。
type Snapshot struct {
	MarketID string
	BestBid  float64
	BestAsk  float64
	Orders   []RestingOrder
	Ts       time.Time
}

// Mid 返回中间价；盘口缺一边时返回 0。
func (s Snapshot) Mid() float64 {
	if s.BestBid <= 0 || s.BestAsk <= 0 {
		return 0
	}
	return (s.BestBid + s.BestAsk) / 2
}

// HasOwnOrder 检查该方向上是否存在归属 owner 的在册挂单。
// 用于判断撤单指令是否需要发出：内存里的 lastPlaced 可能已经成交或过期。
func (s Snapshot) HasOwnOrder(side Side, owner string) bool {
	for _, o := range s.Orders {
		if o.Side == side && o.Owner == owner {
			return true
		}
	}
	return false
}

// BookQuery 行情查询抽象；由 gateway 或 sim 提供实现。
type BookQuery interface {
	GetBook(ctx context.Context, marketID string) (Snapshot, error)
}
