package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a crawl.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	State   State  // State the crawl is in
	Step    int    // Current page number while fetching
	Total   int    // Expected number of sets (-1 when unknown), or the fetched count once persisted
	Message string // Human-readable message for display
	Data    any    // Optional state-specific data
}

// State is a crawl state.
type State int

const (
	Unauthenticated State = iota
	SessionEstablished
	CreatorResolved
	PagesFetching
	Persisted
	Aborted
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case SessionEstablished:
		return "session_established"
	case CreatorResolved:
		return "creator_resolved"
	case PagesFetching:
		return "pages_fetching"
	case Persisted:
		return "persisted"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Persisted || s == Aborted
}

func sessionUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		State:   SessionEstablished,
		Message: fmt.Sprintf("Session established for %s", username),
	}
}

func resolvedUpdate(username, id string, expected int) ProgressUpdate {
	return ProgressUpdate{
		State:   CreatorResolved,
		Total:   expected,
		Message: fmt.Sprintf("Resolved %s (%s)", username, id),
		Data:    id,
	}
}

func pageUpdate(page, edges, fetched, expected int) ProgressUpdate {
	return ProgressUpdate{
		State:   PagesFetching,
		Step:    page,
		Total:   expected,
		Message: fmt.Sprintf("Fetched page %d (%d sets, %d so far)", page, edges, fetched),
		Data:    fetched,
	}
}

func persistedUpdate(result *CrawlResult) ProgressUpdate {
	return ProgressUpdate{
		State:   Persisted,
		Total:   result.Fetched,
		Message: fmt.Sprintf("Saved %d new of %d sets", result.Inserted, result.Fetched),
		Data:    result,
	}
}

func abortedUpdate(from State, err error) ProgressUpdate {
	return ProgressUpdate{
		State:   Aborted,
		Message: fmt.Sprintf("Aborted while %s: %v", from, err),
		Data:    err,
	}
}
