package game

import (
	"strings"
	"testing"
)

func TestSimLog_ActorAndRangeViews(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(10, "M0", "state", "change", "patrolling → assessing", 0)
	sl.Add(20, "M1", "target", "acquire", "entry 2 strength 0.50", 0.5)
	sl.Add(30, "M0", "breakin", "board_removed", "entry 2 attempt 1, 1 left", 1)
	sl.Add(40, "--", "board", "reconciled", "1 stale board(s) pruned", 1)

	if got := len(sl.FilterActor("M0")); got != 2 {
		t.Fatalf("FilterActor(M0) = %d entries, want 2", got)
	}
	m0 := sl.FormatActor("M0")
	if strings.Count(m0, "\n") != 2 || strings.Contains(m0, "M1") {
		t.Fatalf("FormatActor(M0):\n%s", m0)
	}
	if sl.FormatActor("M9") != "" {
		t.Fatal("unknown actor should format empty")
	}

	mid := sl.FormatRange(20, 30)
	if !strings.Contains(mid, "[T=020]") || !strings.Contains(mid, "[T=030]") {
		t.Fatalf("FormatRange(20,30) dropped an edge tick:\n%s", mid)
	}
	if strings.Contains(mid, "[T=010]") || strings.Contains(mid, "[T=040]") {
		t.Fatalf("FormatRange(20,30) leaked outside the range:\n%s", mid)
	}
	if sl.Format() != sl.FormatRange(0, 40) {
		t.Fatal("a range covering every tick should match Format")
	}
}
