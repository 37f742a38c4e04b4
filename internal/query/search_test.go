package query

import "testing"

func TestBuildFtsQuery(t *testing.T) {
	got := BuildFtsQuery(`hello "world" foo`)
	want := `"hello" AND "world" AND "foo"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBuildFtsQueryEmpty(t *testing.T) {
	if got := BuildFtsQuery("   "); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
}

func TestBM25RankToScoreMonotonic(t *testing.T) {
	low := BM25RankToScore(0.5)
	high := BM25RankToScore(5)
	if !(low > high) {
		t.Fatalf("expected lower rank to score higher: low=%v high=%v", low, high)
	}
}

func TestBM25RankToScoreClampsNegative(t *testing.T) {
	if got := BM25RankToScore(-3); got != 1 {
		t.Fatalf("expected negative rank clamped to score 1, got %v", got)
	}
}

func TestFilterWhereClauseDefault(t *testing.T) {
	f := Filter{}
	where, args := f.whereClause()
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("expected trivial where clause, got %q %v", where, args)
	}
}

func TestFilterWhereClauseChannelsAndSenders(t *testing.T) {
	f := Filter{Channels: []string{"#general"}, Senders: []string{"alice", "bob"}}
	where, args := f.whereClause()
	wantWhere := "channel IN (?) AND sender IN (?, ?)"
	if where != wantWhere {
		t.Fatalf("got %q want %q", where, wantWhere)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %v", args)
	}
}
