package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// OracleClient 聚合器询价客户端：按名义数量问一个 USDC 计价的参考价。
// 用于没有独立盘口可参考的市场，带外轮询填充价格缓存。
type OracleClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

type oracleQuoteResp struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// ReferencePrice 询价；失败返回错误，由 Poller 退避重试。
func (c *OracleClient) ReferencePrice(ctx context.Context, symbol string, size float64) (float64, error) {
	if c == nil || c.HTTPClient == nil {
		return 0, fmt.Errorf("http client not set")
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("size", strconv.FormatFloat(size, 'f', -1, 64))
	endpoint := c.BaseURL + "/v1/quote?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("oracle quote status %d", resp.StatusCode)
	}
	var body oracleQuoteResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode oracle quote: %w", err)
	}
	if body.Price <= 0 {
		return 0, fmt.Errorf("oracle quote: non-positive price %v", body.Price)
	}
	return body.Price, nil
}
