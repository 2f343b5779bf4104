package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough BookmarkType = "breakthrough"
	BookmarkStagnation   BookmarkType = "stagnation"
	BookmarkConverged    BookmarkType = "converged"
)

// Detection thresholds.
const (
	breakthroughFactor = 2.0  // improvement over the rolling average
	stagnationWindows  = 5    // windows without improvement
	convergedAbove     = 0.95 // mean similarity to the best genome
	convergedRearm     = 0.80 // similarity must fall below this before firing again
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Generation  int
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in an evolution run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	flatWindows int  // consecutive windows without improvement
	converged   bool // converged bookmark fired and not yet re-armed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkConverged(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Improvement <= 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += max(h.Improvement, 0)
	}
	avg := total / float64(len(history))
	if avg == 0 || stats.Improvement <= avg*breakthroughFactor {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkBreakthrough,
		Generation:  stats.WindowEnd,
		Description: fmt.Sprintf("Best cost fell %.3f, %.1fx the average (%.3f)", stats.Improvement, stats.Improvement/avg, avg),
	}
}

func (bd *BookmarkDetector) checkStagnation(stats WindowStats) *Bookmark {
	if stats.Improvement > 0 {
		bd.flatWindows = 0
		return nil
	}

	bd.flatWindows++
	if bd.flatWindows != stagnationWindows { // trigger exactly once per plateau
		return nil
	}

	return &Bookmark{
		Type:        BookmarkStagnation,
		Generation:  stats.WindowEnd,
		Description: fmt.Sprintf("No improvement for %d windows, best cost %.3f", stagnationWindows, stats.Best),
	}
}

func (bd *BookmarkDetector) checkConverged(stats WindowStats) *Bookmark {
	if bd.converged {
		if stats.Similarity < convergedRearm {
			bd.converged = false
		}
		return nil
	}
	if stats.Similarity < convergedAbove {
		return nil
	}

	bd.converged = true
	return &Bookmark{
		Type:        BookmarkConverged,
		Generation:  stats.WindowEnd,
		Description: fmt.Sprintf("Population similarity %.2f, best cost %.3f", stats.Similarity, stats.Best),
	}
}
