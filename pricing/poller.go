package pricing

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// OracleSource 外部定价源的带外查询接口（区别于热路径的缓存读）。
// size 是用于询价的名义数量。
type OracleSource interface {
	ReferencePrice(ctx context.Context, symbol string, size float64) (float64, error)
}

// Poller 定期向 OracleSource 询价并写入缓存。
// 连续失败时按指数退避推迟下一次尝试，成功后退避归零。
type Poller struct {
	Source   OracleSource
	Cache    Cache
	Symbol   string
	Size     float64
	Interval time.Duration
	Log      *zap.Logger
}

// Run 阻塞轮询直到 ctx 取消。
func (p *Poller) Run(ctx context.Context) error {
	if p.Interval <= 0 {
		p.Interval = 6 * time.Second
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	bo := backoff.NewExponentialBackOff()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	// 启动时先取一次，缓存尽快可用。
	p.pollOnce(ctx, bo, log)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx, bo, log)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, bo *backoff.ExponentialBackOff, log *zap.Logger) {
	price, err := p.Source.ReferencePrice(ctx, p.Symbol, p.Size)
	if err != nil {
		sleep := bo.NextBackOff()
		log.Warn("oracle poll failed",
			zap.String("symbol", p.Symbol),
			zap.Duration("backoff", sleep),
			zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(sleep):
		}
		return
	}
	bo.Reset()
	p.Cache.Set(p.Symbol, price)
	log.Info("oracle price", zap.String("symbol", p.Symbol), zap.Float64("price", price))
}
