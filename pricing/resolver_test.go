package pricing

import (
	"errors"
	"testing"

	"openbook-quoter-go/market"
)

func TestBookResolver(t *testing.T) {
	snap := market.Snapshot{BestBid: 100.00, BestAsk: 100.50}
	var r BookResolver

	bid, err := r.Resolve(snap, market.SideBid)
	if err != nil || bid != 100.00 {
		t.Fatalf("bid ref = %v %v, want 100.00", bid, err)
	}
	ask, err := r.Resolve(snap, market.SideAsk)
	if err != nil || ask != 100.50 {
		t.Fatalf("ask ref = %v %v, want 100.50", ask, err)
	}

	_, err = r.Resolve(market.Snapshot{BestAsk: 100.50}, market.SideBid)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing bid side should be unavailable, got %v", err)
	}
}

func TestOracleResolver(t *testing.T) {
	cache := NewMemoryCache(0)
	r := OracleResolver{Cache: cache, Symbol: "MSOL"}

	if _, err := r.Resolve(market.Snapshot{}, market.SideBid); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("empty cache should be unavailable, got %v", err)
	}

	cache.Set("MSOL", 150.25)
	bid, err := r.Resolve(market.Snapshot{}, market.SideBid)
	if err != nil || bid != 150.25 {
		t.Fatalf("bid ref = %v %v", bid, err)
	}
	ask, _ := r.Resolve(market.Snapshot{}, market.SideAsk)
	if ask != bid {
		t.Fatal("oracle gives a single reference for both sides")
	}
}
