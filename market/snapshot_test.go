package market

import "testing"

func TestMid(t *testing.T) {
	s := Snapshot{BestBid: 100, BestAsk: 101}
	if got := s.Mid(); got != 100.5 {
		t.Fatalf("mid = %v, want 100.5", got)
	}
	if got := (Snapshot{BestBid: 100}).Mid(); got != 0 {
		t.Fatalf("one-sided book mid = %v, want 0", got)
	}
}

func TestHasOwnOrder(t *testing.T) {
	s := Snapshot{Orders: []RestingOrder{
		{Side: SideBid, Owner: "ooa-1", ClientID: 113371, Price: 99.8, Size: 2},
		{Side: SideAsk, Owner: "other", ClientID: 42, Price: 100.9, Size: 1},
	}}
	if !s.HasOwnOrder(SideBid, "ooa-1") {
		t.Fatal("expected own bid to be found")
	}
	if s.HasOwnOrder(SideAsk, "ooa-1") {
		t.Fatal("ask side has no own order, cancel must not be emitted")
	}
	if s.HasOwnOrder(SideBid, "ooa-2") {
		t.Fatal("foreign owner must not match")
	}
}

func TestSideOpposite(t *testing.T) {
	if SideBid.Opposite() != SideAsk || SideAsk.Opposite() != SideBid {
		t.Fatal("opposite sides wrong")
	}
}
