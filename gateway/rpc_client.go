package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"openbook-quoter-go/market"
	"openbook-quoter-go/order"
)

// RPCClient 节点 JSON-RPC 客户端；HTTPClient 可注入 httptest。
// 签名在节点侧的签名代理完成，本进程不持有私钥。
type RPCClient struct {
	BaseURL    string
	HTTPClient *http.Client

	reqID atomic.Uint64
}

// NewDefaultHTTPClient 默认 10s 超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params, out interface{}) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d", method, resp.StatusCode)
	}
	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%s rpc error %d: %s", method, rr.Error.Code, rr.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

type bookResult struct {
	BestBid float64 `json:"bestBid"`
	BestAsk float64 `json:"bestAsk"`
	Orders  []struct {
		Side     string  `json:"side"`
		Owner    string  `json:"owner"`
		ClientID uint64  `json:"clientId"`
		Price    float64 `json:"price"`
		Size     float64 `json:"size"`
	} `json:"orders"`
}

// GetBook 拉取市场快照。
func (c *RPCClient) GetBook(ctx context.Context, marketID string) (market.Snapshot, error) {
	var res bookResult
	if err := c.call(ctx, "getOrderBook", []string{marketID}, &res); err != nil {
		return market.Snapshot{}, err
	}
	snap := market.Snapshot{
		MarketID: marketID,
		BestBid:  res.BestBid,
		BestAsk:  res.BestAsk,
		Ts:       time.Now(),
	}
	for _, o := range res.Orders {
		side := market.SideBid
		if o.Side == "ask" || o.Side == "ASK" {
			side = market.SideAsk
		}
		snap.Orders = append(snap.Orders, market.RestingOrder{
			Side:     side,
			Owner:    o.Owner,
			ClientID: o.ClientID,
			Price:    o.Price,
			Size:     o.Size,
		})
	}
	return snap, nil
}

type balanceResult struct {
	UIAmount float64 `json:"uiAmount"`
}

// Balance 查询钱包余额（UI 单位）。
func (c *RPCClient) Balance(ctx context.Context, wallet string) (float64, error) {
	var res balanceResult
	if err := c.call(ctx, "getTokenAccountBalance", []string{wallet}, &res); err != nil {
		return 0, err
	}
	return res.UIAmount, nil
}

type submitResult struct {
	Signature string `json:"signature"`
}

// Submit 把一个指令批次发给节点的交易构建端点，一次提交，不重试。
func (c *RPCClient) Submit(ctx context.Context, b order.Batch) (string, error) {
	var res submitResult
	if err := c.call(ctx, "sendInstructionBatch", b, &res); err != nil {
		return "", err
	}
	if res.Signature == "" {
		return "", fmt.Errorf("sendInstructionBatch: empty signature")
	}
	return res.Signature, nil
}

var (
	_ market.BookQuery = (*RPCClient)(nil)
	_ order.Submitter  = (*RPCClient)(nil)
)
