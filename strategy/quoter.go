package strategy

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"openbook-quoter-go/config"
	"openbook-quoter-go/inventory"
	"openbook-quoter-go/market"
	"openbook-quoter-go/metrics"
	"openbook-quoter-go/order"
	"openbook-quoter-go/pricing"
	"openbook-quoter-go/quote"
)

const (
	defaultQuoteInterval = 5000 * time.Millisecond
	defaultLeanInterval  = 30000 * time.Millisecond
	// warmupDelay 首个成功报价周期后的一次性停顿，等盘口事件队列消化完
	// 再读下一次快照。只发生一次，每个市场实例各自一次。
	warmupDelay = 2000 * time.Millisecond
)

// Quoter 一个市场实例的策略循环。两个定时器（报价 + lean 重算）
// 跑在同一个 goroutine 里，实例间不共享任何可变状态，无需加锁。
type Quoter struct {
	name     string
	cfg      config.MarketConfig
	log      *zap.Logger
	engine   *quote.Engine
	resolver pricing.Resolver
	leaner   *inventory.Leaner
	books    market.BookQuery
	replacer *order.Replacer

	bidSlots []*quote.Slot
	askSlots []*quote.Slot

	quoteInterval time.Duration
	leanInterval  time.Duration
	warmupDone    bool

	// sleep 可注入，测试里替换掉真实等待。
	sleep func(time.Duration)
}

// NewQuoter 按市场配置装配一个策略实例。
func NewQuoter(
	name string,
	cfg config.MarketConfig,
	resolver pricing.Resolver,
	leaner *inventory.Leaner,
	books market.BookQuery,
	replacer *order.Replacer,
	log *zap.Logger,
) (*Quoter, error) {
	if resolver == nil || leaner == nil || books == nil || replacer == nil {
		return nil, errors.New("strategy: quoter dependencies missing")
	}
	if log == nil {
		log = zap.NewNop()
	}
	engine, err := quote.NewEngine(cfg.Strategy.MinQuoteChange)
	if err != nil {
		return nil, err
	}

	q := &Quoter{
		name:          name,
		cfg:           cfg,
		log:           log.With(zap.String("market", name)),
		engine:        engine,
		resolver:      resolver,
		leaner:        leaner,
		books:         books,
		replacer:      replacer,
		quoteInterval: time.Duration(cfg.Strategy.QuoteIntervalMs) * time.Millisecond,
		leanInterval:  time.Duration(cfg.Strategy.LeanIntervalMs) * time.Millisecond,
		sleep:         time.Sleep,
	}
	if q.quoteInterval <= 0 {
		q.quoteInterval = defaultQuoteInterval
	}
	if q.leanInterval <= 0 {
		q.leanInterval = defaultLeanInterval
	}

	ids := cfg.Strategy.ClientIDs
	q.bidSlots = []*quote.Slot{{Side: market.SideBid, Level: quote.LevelTop, ClientID: ids.Bid}}
	q.askSlots = []*quote.Slot{{Side: market.SideAsk, Level: quote.LevelTop, ClientID: ids.Ask}}
	if cfg.Strategy.Levels == 2 {
		q.bidSlots = append(q.bidSlots,
			&quote.Slot{Side: market.SideBid, Level: quote.LevelDeep, ClientID: ids.BidDeep})
		q.askSlots = append(q.askSlots,
			&quote.Slot{Side: market.SideAsk, Level: quote.LevelDeep, ClientID: ids.AskDeep})
	}
	return q, nil
}

// Run 阻塞运行策略循环直到 ctx 取消。
func (q *Quoter) Run(ctx context.Context) error {
	q.log.Info("quoter started",
		zap.String("priceSource", q.cfg.PriceSource),
		zap.Int("levels", q.cfg.Strategy.Levels),
		zap.Duration("quoteInterval", q.quoteInterval),
		zap.Duration("leanInterval", q.leanInterval))

	// 启动先算一次 lean，别带着默认数量进第一个报价周期。
	q.safely("lean", func() { q.updateLean(ctx) })

	quoteTicker := time.NewTicker(q.quoteInterval)
	defer quoteTicker.Stop()
	leanTicker := time.NewTicker(q.leanInterval)
	defer leanTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-leanTicker.C:
			q.safely("lean", func() { q.updateLean(ctx) })
		case <-quoteTicker.C:
			q.safely("cycle", func() { q.runCycle(ctx) })
		}
	}
}

// safely 把一次回调内的 panic 挡在周期边界上，定时器继续走。
func (q *Quoter) safely(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("unhandled panic in loop", zap.String("phase", name), zap.Any("panic", r))
		}
	}()
	fn()
}

// runCycle 一个完整报价周期：快照 → 参考价 → 双边决策 → 替换提交。
func (q *Quoter) runCycle(ctx context.Context) {
	snap, err := q.books.GetBook(ctx, q.cfg.MarketID)
	if err != nil {
		// 瞬时查询失败：本周期跳过，状态不动。
		q.log.Warn("book query failed", zap.Error(err))
		metrics.CyclesSkipped.WithLabelValues(q.cfg.MarketID).Inc()
		return
	}

	bidRef, bidErr := q.resolver.Resolve(snap, market.SideBid)
	askRef, askErr := q.resolver.Resolve(snap, market.SideAsk)
	if bidErr != nil || askErr != nil {
		// 参考价不可用 ⇒ 整个周期跳过，不做单边报价。
		q.log.Warn("no pricing source, skipping cycle")
		metrics.CyclesSkipped.WithLabelValues(q.cfg.MarketID).Inc()
		return
	}

	q.quoteSide(ctx, snap, market.SideBid, bidRef)
	q.quoteSide(ctx, snap, market.SideAsk, askRef)

	metrics.QuoteCycles.WithLabelValues(q.cfg.MarketID).Inc()

	if !q.warmupDone {
		q.log.Info("first cycle complete, settling", zap.Duration("delay", warmupDelay))
		q.sleep(warmupDelay)
		q.warmupDone = true
	}
}

func (q *Quoter) quoteSide(ctx context.Context, snap market.Snapshot, side market.Side, ref float64) {
	ownResting := snap.HasOwnOrder(side, q.cfg.OpenOrders)

	slots := q.bidSlots
	mult := q.cfg.Strategy.BidSpread
	size := q.leaner.BidSize()
	if side == market.SideAsk {
		slots = q.askSlots
		mult = q.cfg.Strategy.AskSpread
		size = q.leaner.AskSize()
	}
	perLevel := size / float64(len(slots))

	for _, slot := range slots {
		m := mult
		if slot.Level == quote.LevelDeep {
			m = quote.DeepLevelMultiplier(side, mult)
		}
		d := q.engine.DecideWithBook(slot, ref, m, ownResting)
		if !d.Place {
			continue
		}
		slot.Size = perLevel
		q.replacer.Replace(ctx, slot, d.TargetPrice, perLevel, d.CancelExisting)
		if slot.Level == quote.LevelTop {
			metrics.LastQuotePrice.WithLabelValues(q.cfg.MarketID, string(side)).Set(d.TargetPrice)
		}
	}
}

// updateLean 重算 lean 系数；变化的方向清零槽位 LastPlaced，
// 下个报价周期按新数量无条件重挂。
func (q *Quoter) updateLean(ctx context.Context) {
	ch := q.leaner.Update(ctx)
	if ch.Bid {
		for _, s := range q.bidSlots {
			s.ResetLastPlaced()
		}
	}
	if ch.Ask {
		for _, s := range q.askSlots {
			s.ResetLastPlaced()
		}
	}
	metrics.LeanFactor.WithLabelValues(q.cfg.MarketID, string(market.SideBid)).Set(q.leaner.BidFactor())
	metrics.LeanFactor.WithLabelValues(q.cfg.MarketID, string(market.SideAsk)).Set(q.leaner.AskFactor())
}
