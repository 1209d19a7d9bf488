package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string                  `yaml:"env"`
	Log     LogConfig               `yaml:"log"`
	Metrics MetricsConfig           `yaml:"metrics"`
	Node    NodeConfig              `yaml:"node"`
	Oracle  OracleConfig            `yaml:"oracle"`
	Markets map[string]MarketConfig `yaml:"markets"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json 或 console
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 留空则不启动 /metrics
}

// NodeConfig 节点 RPC 端点；签名密钥路径留给提交层。
type NodeConfig struct {
	RPCURL      string `yaml:"rpcURL"`
	KeypairPath string `yaml:"keypairPath"`
	// 批次前缀的计算预算参数；0 用默认值。
	PriorityFeeMicroLamports uint64 `yaml:"priorityFeeMicroLamports"`
	PriorityComputeUnits     uint32 `yaml:"priorityComputeUnits"`
}

// OracleConfig 外部定价源与缓存的配置。
type OracleConfig struct {
	Endpoint       string `yaml:"endpoint"`       // 聚合器询价 HTTP 端点
	PollIntervalMs int    `yaml:"pollIntervalMs"` // 带外询价周期，默认 6000
	MaxAgeMs       int    `yaml:"maxAgeMs"`       // 缓存条目超龄视为未命中，0 不限
	FeedEndpoint   string `yaml:"feedEndpoint"`   // 可选 ws 推送端点
	RedisAddr      string `yaml:"redisAddr"`      // 非空则用 Redis 共享缓存
}

// MarketConfig 一个市场实例的全部参数，策略生命周期内不变。
type MarketConfig struct {
	MarketID    string `yaml:"marketId"`
	OpenOrders  string `yaml:"openOrders"`
	BaseWallet  string `yaml:"baseWallet"`
	QuoteWallet string `yaml:"quoteWallet"`
	BaseSymbol  string `yaml:"baseSymbol"`
	QuoteSymbol string `yaml:"quoteSymbol"`
	// PriceSource "book"（自引用盘口）或 "oracle"（外部定价源）。
	PriceSource string      `yaml:"priceSource"`
	Strategy    QuoteParams `yaml:"strategy"`
}

// QuoteParams 报价核心参数。
type QuoteParams struct {
	QuoteSize      float64 `yaml:"quoteSize"`      // 基础报价数量
	BidSpread      float64 `yaml:"bidSpread"`      // bid 乘数，< 1（如 0.9987）
	AskSpread      float64 `yaml:"askSpread"`      // ask 乘数，> 1（如 1.0012）
	MinQuoteChange float64 `yaml:"minQuoteChange"` // 滞回带宽度，默认 0.0010
	Levels         int     `yaml:"levels"`         // 报价档数，1 或 2
	QuoteIntervalMs int    `yaml:"quoteIntervalMs"` // 报价周期，默认 5000
	LeanIntervalMs  int    `yaml:"leanIntervalMs"`  // lean 重算周期，默认 30000

	BaseLeanThreshold  float64            `yaml:"baseLeanThreshold"`
	QuoteLeanThreshold float64            `yaml:"quoteLeanThreshold"`
	LeanFactors        map[string]float64 `yaml:"leanFactors"` // 资产 → (0,1]

	ClientIDs ClientIDs `yaml:"clientIds"`
}

// ClientIDs 各槽位固定的 client id；策略生命周期内唯一且不变。
type ClientIDs struct {
	Bid     uint64 `yaml:"bid"`
	BidDeep uint64 `yaml:"bidDeep"`
	Ask     uint64 `yaml:"ask"`
	AskDeep uint64 `yaml:"askDeep"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("QUOTER_RPC_URL"); v != "" {
		cfg.Node.RPCURL = v
	}
	if v := os.Getenv("QUOTER_KEYPAIR_PATH"); v != "" {
		cfg.Node.KeypairPath = v
	}
	if v := os.Getenv("QUOTER_REDIS_ADDR"); v != "" {
		cfg.Oracle.RedisAddr = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Node.RPCURL == "" {
		return errors.New("node.rpcURL is required (or QUOTER_RPC_URL)")
	}
	if len(cfg.Markets) == 0 {
		return errors.New("markets config is required")
	}
	for name, mc := range cfg.Markets {
		if mc.MarketID == "" {
			return fmt.Errorf("market %s marketId is required", name)
		}
		if mc.OpenOrders == "" {
			return fmt.Errorf("market %s openOrders is required", name)
		}
		if mc.BaseWallet == "" || mc.QuoteWallet == "" {
			return fmt.Errorf("market %s base/quote wallet is required", name)
		}
		if mc.PriceSource != "book" && mc.PriceSource != "oracle" {
			return fmt.Errorf("market %s priceSource must be book or oracle", name)
		}
		if mc.PriceSource == "oracle" && mc.BaseSymbol == "" {
			return fmt.Errorf("market %s baseSymbol is required for oracle pricing", name)
		}
		if mc.PriceSource == "oracle" && cfg.Oracle.Endpoint == "" && cfg.Oracle.FeedEndpoint == "" {
			return fmt.Errorf("market %s uses oracle pricing but oracle.endpoint/feedEndpoint are empty", name)
		}
		s := mc.Strategy
		if s.QuoteSize <= 0 {
			return fmt.Errorf("market %s strategy.quoteSize must be > 0", name)
		}
		if s.BidSpread <= 0 || s.BidSpread >= 1 {
			return fmt.Errorf("market %s strategy.bidSpread must be in (0,1)", name)
		}
		if s.AskSpread <= 1 {
			return fmt.Errorf("market %s strategy.askSpread must be > 1", name)
		}
		if s.MinQuoteChange < 0 {
			return fmt.Errorf("market %s strategy.minQuoteChange must be >= 0", name)
		}
		if s.Levels < 1 || s.Levels > 2 {
			return fmt.Errorf("market %s strategy.levels must be 1 or 2", name)
		}
		if s.QuoteIntervalMs < 0 || s.LeanIntervalMs < 0 {
			return fmt.Errorf("market %s strategy intervals must be >= 0", name)
		}
		if s.BaseLeanThreshold < 0 || s.QuoteLeanThreshold < 0 {
			return fmt.Errorf("market %s strategy lean thresholds must be >= 0", name)
		}
		for asset, f := range s.LeanFactors {
			if f <= 0 || f > 1 {
				return fmt.Errorf("market %s leanFactors[%s] must be in (0,1]", name, asset)
			}
		}
		if s.ClientIDs.Bid == 0 || s.ClientIDs.Ask == 0 {
			return fmt.Errorf("market %s clientIds.bid/ask are required", name)
		}
		if s.Levels == 2 && (s.ClientIDs.BidDeep == 0 || s.ClientIDs.AskDeep == 0) {
			return fmt.Errorf("market %s clientIds.bidDeep/askDeep required for 2 levels", name)
		}
	}
	return nil
}
