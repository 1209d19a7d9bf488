package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"openbook-quoter-go/market"
	"openbook-quoter-go/order"
)

func rpcServer(t *testing.T, handler func(method string, params json.RawMessage) (interface{}, bool)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode rpc request: %v", err)
		}
		result, ok := handler(req.Method, req.Params)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": -32000, "message": "node error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
	}))
}

func TestGetBook(t *testing.T) {
	srv := rpcServer(t, func(method string, _ json.RawMessage) (interface{}, bool) {
		if method != "getOrderBook" {
			t.Fatalf("unexpected method %s", method)
		}
		return map[string]interface{}{
			"bestBid": 100.00,
			"bestAsk": 100.50,
			"orders": []map[string]interface{}{
				{"side": "bid", "owner": "ooa-1", "clientId": 113371, "price": 99.8, "size": 2.5},
			},
		}, true
	})
	defer srv.Close()

	c := &RPCClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
	snap, err := c.GetBook(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if snap.BestBid != 100.00 || snap.BestAsk != 100.50 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !snap.HasOwnOrder(market.SideBid, "ooa-1") {
		t.Fatal("resting order lost in translation")
	}
}

func TestBalance_ErrorPropagates(t *testing.T) {
	srv := rpcServer(t, func(string, json.RawMessage) (interface{}, bool) { return nil, false })
	defer srv.Close()

	c := &RPCClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := c.Balance(context.Background(), "wallet-1"); err == nil {
		t.Fatal("expected rpc error")
	}
}

func TestSubmit(t *testing.T) {
	var gotBatch order.Batch
	srv := rpcServer(t, func(method string, params json.RawMessage) (interface{}, bool) {
		if method != "sendInstructionBatch" {
			t.Fatalf("unexpected method %s", method)
		}
		if err := json.Unmarshal(params, &gotBatch); err != nil {
			t.Fatalf("unmarshal batch: %v", err)
		}
		return map[string]string{"signature": "sig-1"}, true
	})
	defer srv.Close()

	c := &RPCClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
	batch := order.Batch{Instructions: []order.Instruction{{Kind: order.KindSettleFunds}}}
	sig, err := c.Submit(context.Background(), batch)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sig != "sig-1" {
		t.Fatalf("signature = %s", sig)
	}
	if len(gotBatch.Instructions) != 1 || gotBatch.Instructions[0].Kind != order.KindSettleFunds {
		t.Fatalf("batch not delivered intact: %+v", gotBatch)
	}
}

func TestOracleClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "ORCA" {
			t.Fatalf("symbol param missing: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"symbol": "ORCA", "price": 2.5})
	}))
	defer srv.Close()

	c := &OracleClient{BaseURL: srv.URL, HTTPClient: srv.Client()}
	p, err := c.ReferencePrice(context.Background(), "ORCA", 250)
	if err != nil || p != 2.5 {
		t.Fatalf("reference price = %v %v", p, err)
	}
}
