package inventory

import (
	"context"

	"go.uber.org/zap"
)

// BalanceQuery 钱包余额查询抽象；失败表示"未知"，不是 0。
type BalanceQuery interface {
	Balance(ctx context.Context, wallet string) (float64, error)
}

// DefaultLeanFactor 资产没有单独配置时使用的 lean 系数。
const DefaultLeanFactor = 0.5

// LeanConfig lean 计算所需的全部配置，策略生命周期内不变。
type LeanConfig struct {
	BaseWallet  string
	QuoteWallet string
	BaseSymbol  string
	QuoteSymbol string
	// QuoteSize 配置报价数量；实际下单量 = QuoteSize × 对应方向系数。
	QuoteSize float64
	// BaseThreshold base 余额低于等于它 ⇒ bid 缩量（别再买入）。
	BaseThreshold float64
	// QuoteThreshold quote 余额低于等于它 ⇒ ask 缩量（别再卖出换 base）。
	QuoteThreshold float64
	// Factors 按资产标识查 lean 系数，(0,1]。
	Factors map[string]float64
}

// Change 记录本次更新哪些方向的系数发生了变化。
// 变化的方向要把对应槽位 LastPlaced 清零，下周期按新数量无条件重挂。
type Change struct {
	Bid bool
	Ask bool
}

// Leaner 库存倾斜计算器。余额与系数只被本策略自己的定时回调更新，
// 与报价周期跑在同一个 goroutine，无需加锁。
type Leaner struct {
	cfg      LeanConfig
	balances BalanceQuery
	log      *zap.Logger

	// 最近一次成功观察到的余额；nil = 未知。
	baseBalance  *float64
	quoteBalance *float64

	bidFactor float64
	askFactor float64
}

func NewLeaner(cfg LeanConfig, balances BalanceQuery, log *zap.Logger) *Leaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Leaner{
		cfg:       cfg,
		balances:  balances,
		log:       log,
		bidFactor: 1,
		askFactor: 1,
	}
}

// Factor 按资产标识返回 lean 系数；纯函数，未配置时取默认值。
func (l *Leaner) Factor(asset string) float64 {
	if f, ok := l.cfg.Factors[asset]; ok && f > 0 && f <= 1 {
		return f
	}
	return DefaultLeanFactor
}

// BidFactor 当前 bid 方向系数。
func (l *Leaner) BidFactor() float64 { return l.bidFactor }

// AskFactor 当前 ask 方向系数。
func (l *Leaner) AskFactor() float64 { return l.askFactor }

// BidSize 当前 bid 下单数量。
func (l *Leaner) BidSize() float64 { return l.cfg.QuoteSize * l.bidFactor }

// AskSize 当前 ask 下单数量。
func (l *Leaner) AskSize() float64 { return l.cfg.QuoteSize * l.askFactor }

// Update 刷新余额并重算两侧系数。查询失败的那一侧保持原系数不变
// （fail-open，而不是回到默认值）。
func (l *Leaner) Update(ctx context.Context) Change {
	var ch Change

	// quote 余额紧张 ⇒ ask 缩量，少卖 base。
	if qb, err := l.balances.Balance(ctx, l.cfg.QuoteWallet); err != nil {
		l.log.Warn("quote balance query failed", zap.Error(err))
	} else {
		l.quoteBalance = &qb
		next := 1.0
		if qb <= l.cfg.QuoteThreshold {
			next = l.Factor(l.cfg.BaseSymbol)
		}
		if next != l.askFactor {
			l.askFactor = next
			ch.Ask = true
			l.log.Info("ask lean factor changed",
				zap.Float64("factor", next), zap.Float64("quoteBalance", qb))
		}
	}

	// base 余额紧张 ⇒ bid 缩量，少买 base。
	if bb, err := l.balances.Balance(ctx, l.cfg.BaseWallet); err != nil {
		l.log.Warn("base balance query failed", zap.Error(err))
	} else {
		l.baseBalance = &bb
		next := 1.0
		if bb <= l.cfg.BaseThreshold {
			next = l.Factor(l.cfg.QuoteSymbol)
		}
		if next != l.bidFactor {
			l.bidFactor = next
			ch.Bid = true
			l.log.Info("bid lean factor changed",
				zap.Float64("factor", next), zap.Float64("baseBalance", bb))
		}
	}

	return ch
}
