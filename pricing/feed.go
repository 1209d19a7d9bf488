package pricing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSFeed 定价源的 websocket 推送客户端：读 tick 写缓存。
// 仅提供最小骨架：连接 + 读取；断线由调用方（errgroup）决定是否重启。
type WSFeed struct {
	Endpoint string
	Cache    Cache
	Log      *zap.Logger
	Dialer   *websocket.Dialer

	// ReadTimeout 单条消息的最长等待；0 表示 30s。
	ReadTimeout time.Duration
}

type feedTick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Run 连接并持续读取 tick 直到出错或连接关闭。
func (f *WSFeed) Run() error {
	if f.Endpoint == "" {
		return fmt.Errorf("pricing: feed endpoint required")
	}
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	log := f.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := f.ReadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	conn, _, err := dialer.Dial(f.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("pricing: dial feed: %w", err)
	}
	defer conn.Close()
	log.Info("price feed connected", zap.String("endpoint", f.Endpoint))

	for {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("pricing: feed read: %w", err)
		}
		var tick feedTick
		if err := json.Unmarshal(message, &tick); err != nil {
			// 非 tick 消息（心跳等）直接忽略。
			continue
		}
		if tick.Symbol == "" || tick.Price <= 0 {
			continue
		}
		f.Cache.Set(tick.Symbol, tick.Price)
	}
}
