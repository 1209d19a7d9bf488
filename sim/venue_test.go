package sim

import (
	"context"
	"testing"

	"openbook-quoter-go/market"
	"openbook-quoter-go/order"
)

func TestVenue_PlaceThenCancel(t *testing.T) {
	v := NewVenue("mkt-1", "ooa-1", nil)
	v.SetQuotes(100.00, 100.50)

	_, err := v.Submit(context.Background(), order.Batch{Instructions: []order.Instruction{
		{Kind: order.KindConsumeEvents},
		{Kind: order.KindSettleFunds},
		{Kind: order.KindPlaceOrder, Side: market.SideBid, ClientID: 113371, Price: 99.87, Size: 2.8},
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap, err := v.GetBook(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if !snap.HasOwnOrder(market.SideBid, "ooa-1") {
		t.Fatal("placed order must rest on the book")
	}

	// replace cycle: cancel + place 新价。
	_, _ = v.Submit(context.Background(), order.Batch{Instructions: []order.Instruction{
		{Kind: order.KindCancelByClientID, Side: market.SideBid, ClientID: 113371},
		{Kind: order.KindSettleFunds},
		{Kind: order.KindPlaceOrder, Side: market.SideBid, ClientID: 113371, Price: 99.95, Size: 2.8},
	}})
	orders := v.RestingOrders()
	if len(orders) != 1 || orders[0].Price != 99.95 {
		t.Fatalf("expected single replaced order at 99.95, got %+v", orders)
	}
}

func TestVenue_UnknownMarketAndWallet(t *testing.T) {
	v := NewVenue("mkt-1", "ooa-1", nil)
	if _, err := v.GetBook(context.Background(), "other"); err == nil {
		t.Fatal("unknown market must error")
	}
	if _, err := v.Balance(context.Background(), "nope"); err == nil {
		t.Fatal("unknown wallet must error")
	}
	v.SetBalance("w", 12.5)
	if got, err := v.Balance(context.Background(), "w"); err != nil || got != 12.5 {
		t.Fatalf("balance = %v %v", got, err)
	}
}
