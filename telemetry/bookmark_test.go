package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Breakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Steady small improvements
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEnd: i * 10, Improvement: 0.1})
	}

	// Now a window improving 5x the average
	bookmarks := bd.Check(WindowStats{WindowEnd: 50, Improvement: 0.5})
	if !hasBookmark(bookmarks, BookmarkBreakthrough) {
		t.Error("expected breakthrough bookmark")
	}
	if bookmarks[0].Generation != 50 {
		t.Errorf("bookmark generation = %d, want 50", bookmarks[0].Generation)
	}
}

func TestBookmarkDetector_NoBreakthroughWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Improvement: 0.1})

	if hasBookmark(bd.Check(WindowStats{Improvement: 5}), BookmarkBreakthrough) {
		t.Error("breakthrough fired with only one window of history")
	}
}

func TestBookmarkDetector_StagnationFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		if hasBookmark(bd.Check(WindowStats{WindowEnd: i, Best: 3}), BookmarkStagnation) {
			fired++
			if i != stagnationWindows-1 {
				t.Errorf("stagnation fired at window %d, want %d", i, stagnationWindows-1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("stagnation fired %d times over one plateau, want 1", fired)
	}

	// An improvement starts a new plateau count
	bd.Check(WindowStats{Improvement: 1})
	for i := 0; i < stagnationWindows; i++ {
		if hasBookmark(bd.Check(WindowStats{}), BookmarkStagnation) {
			fired++
		}
	}
	if fired != 2 {
		t.Errorf("stagnation fired %d times over two plateaus, want 2", fired)
	}
}

func TestBookmarkDetector_ConvergedRearms(t *testing.T) {
	bd := NewBookmarkDetector(10)

	similarity := []float64{0.5, 0.96, 0.99, 0.9, 0.97, 0.7, 0.98}
	want := []bool{false, true, false, false, false, false, true}

	for i, s := range similarity {
		got := hasBookmark(bd.Check(WindowStats{Similarity: s, Improvement: 1}), BookmarkConverged)
		if got != want[i] {
			t.Errorf("window %d (similarity %.2f): converged = %v, want %v", i, s, got, want[i])
		}
	}
}
