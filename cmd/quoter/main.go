package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"openbook-quoter-go/config"
	"openbook-quoter-go/gateway"
	"openbook-quoter-go/infrastructure/logger"
	"openbook-quoter-go/inventory"
	"openbook-quoter-go/metrics"
	"openbook-quoter-go/order"
	"openbook-quoter-go/pricing"
	"openbook-quoter-go/strategy"
)

// memoTag 附在每个指令批次末尾，方便链上审计时确认来源。
const memoTag = "openbook-quoter-go"

const (
	defaultPriorityFee  = 10_000
	defaultComputeUnits = 54_800
)

// dryRunSubmitter 只记日志不提交，用于线下演练配置。
type dryRunSubmitter struct {
	log *zap.Logger
}

func (d dryRunSubmitter) Submit(_ context.Context, b order.Batch) (string, error) {
	d.log.Info("dry-run batch",
		zap.String("market", b.Accounts.MarketID),
		zap.Int("instructions", len(b.Instructions)))
	return "dry-run", nil
}

func main() {
	cfgPath := flag.String("config", "configs/quoter.yaml", "配置文件路径")
	only := flag.String("market", "", "只跑指定市场（配置里的 key），留空跑全部")
	dryRun := flag.Bool("dryRun", false, "仅日志输出指令批次，不真正提交")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，覆盖配置")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	zlog, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, *cfgPath, zlog, *only, *dryRun, *metricsAddr); err != nil &&
		!errors.Is(err, context.Canceled) {
		zlog.Fatal("quoter exited", zap.Error(err))
	}
	zlog.Info("quoter shut down")
}

func run(cfg config.AppConfig, cfgPath string, zlog *zap.Logger, only string, dryRun bool, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		metrics.StartMetricsServer(metricsAddr)
		zlog.Info("metrics server started", zap.String("addr", metricsAddr))
	}

	rpc := &gateway.RPCClient{
		BaseURL:    cfg.Node.RPCURL,
		HTTPClient: gateway.NewDefaultHTTPClient(),
	}

	// 定价缓存：配了 Redis 用共享缓存（多实例复用同一份价格），
	// 否则进程内缓存。
	maxAge := time.Duration(cfg.Oracle.MaxAgeMs) * time.Millisecond
	var cache pricing.Cache
	if cfg.Oracle.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Oracle.RedisAddr})
		cache = pricing.NewRedisCache(rdb, maxAge, zlog)
		zlog.Info("using redis price cache", zap.String("addr", cfg.Oracle.RedisAddr))
	} else {
		cache = pricing.NewMemoryCache(maxAge)
	}

	fee := order.PriorityFee{
		MicroLamports: cfg.Node.PriorityFeeMicroLamports,
		ComputeUnits:  cfg.Node.PriorityComputeUnits,
	}
	if fee.MicroLamports == 0 {
		fee.MicroLamports = defaultPriorityFee
	}
	if fee.ComputeUnits == 0 {
		fee.ComputeUnits = defaultComputeUnits
	}

	var submitter order.Submitter = rpc
	if dryRun {
		submitter = dryRunSubmitter{log: zlog}
		zlog.Warn("dry-run mode: batches are logged, not submitted")
	}

	g, ctx := errgroup.WithContext(ctx)

	// 每个走 oracle 定价的 symbol 起一个轮询器；同 symbol 的市场共享缓存条目。
	oracleSymbols := map[string]float64{}
	started := 0
	for name, mc := range cfg.Markets {
		if only != "" && name != only {
			continue
		}
		var resolver pricing.Resolver
		switch mc.PriceSource {
		case "oracle":
			resolver = pricing.OracleResolver{Cache: cache, Symbol: mc.BaseSymbol}
			if _, ok := oracleSymbols[mc.BaseSymbol]; !ok {
				oracleSymbols[mc.BaseSymbol] = mc.Strategy.QuoteSize
			}
		default:
			resolver = pricing.BookResolver{}
		}

		leaner := inventory.NewLeaner(inventory.LeanConfig{
			BaseWallet:     mc.BaseWallet,
			QuoteWallet:    mc.QuoteWallet,
			BaseSymbol:     mc.BaseSymbol,
			QuoteSymbol:    mc.QuoteSymbol,
			QuoteSize:      mc.Strategy.QuoteSize,
			BaseThreshold:  mc.Strategy.BaseLeanThreshold,
			QuoteThreshold: mc.Strategy.QuoteLeanThreshold,
			Factors:        mc.Strategy.LeanFactors,
		}, rpc, zlog)

		replacer := &order.Replacer{
			Accounts: order.Accounts{
				MarketID:    mc.MarketID,
				OpenOrders:  mc.OpenOrders,
				Owner:       mc.OpenOrders,
				BaseWallet:  mc.BaseWallet,
				QuoteWallet: mc.QuoteWallet,
			},
			Submitter: submitter,
			Memo:      memoTag,
			Fee:       fee,
			Log:       zlog,
		}

		q, err := strategy.NewQuoter(name, mc, resolver, leaner, rpc, replacer, zlog)
		if err != nil {
			return err
		}
		g.Go(func() error { return q.Run(ctx) })
		started++
	}
	if started == 0 {
		return errors.New("no market matched, nothing to run")
	}

	if cfg.Oracle.Endpoint != "" {
		oracleClient := &gateway.OracleClient{
			BaseURL:    cfg.Oracle.Endpoint,
			HTTPClient: gateway.NewDefaultHTTPClient(),
		}
		interval := time.Duration(cfg.Oracle.PollIntervalMs) * time.Millisecond
		for symbol, size := range oracleSymbols {
			poller := &pricing.Poller{
				Source:   oracleClient,
				Cache:    cache,
				Symbol:   symbol,
				Size:     size,
				Interval: interval,
				Log:      zlog,
			}
			g.Go(func() error { return poller.Run(ctx) })
		}
	}

	if cfg.Oracle.FeedEndpoint != "" {
		feed := &pricing.WSFeed{
			Endpoint: cfg.Oracle.FeedEndpoint,
			Cache:    cache,
			Log:      zlog,
		}
		g.Go(func() error { return runFeed(ctx, feed, zlog) })
	}

	// 市场参数在策略生命周期内不变，热改配置只校验 + 提示，重启后生效。
	watcher := config.Watcher{Path: cfgPath, Log: zlog}
	g.Go(func() error {
		return watcher.Start(ctx, func(config.AppConfig) {
			zlog.Info("config file updated, restart to apply market changes")
		})
	})

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		zlog.Warn("sd_notify failed", zap.Error(err))
	} else if sent {
		zlog.Info("systemd notified: ready")
	}
	zlog.Info("quoter running", zap.Int("markets", started), zap.Bool("dryRun", dryRun))

	err := g.Wait()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	return err
}

// runFeed 断线重连循环；交给 errgroup 的只在 ctx 取消时退出。
func runFeed(ctx context.Context, feed *pricing.WSFeed, zlog *zap.Logger) error {
	for {
		if err := feed.Run(); err != nil {
			zlog.Warn("price feed disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}
