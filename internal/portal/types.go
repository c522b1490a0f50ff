package portal

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned by session stores for unknown tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCredentials is returned when an employee id/password pair is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity describes an authenticated employee.
type Identity struct {
	SubjectID   string `json:"subject_id"`
	DisplayName string `json:"display_name"`
	Department  string `json:"department"`
}

// Session is the server-held record for one logged-in browser.
type Session struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	Character string    `json:"character,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Article is a single crawl result record.
type Article struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	Category string `json:"category,omitempty"`
}

// CrawlResult is the payload returned for one crawl request.
type CrawlResult struct {
	Keyword    string    `json:"keyword"`
	Articles   []Article `json:"articles"`
	TotalCount int       `json:"total_count"`
	CrawlTime  string    `json:"crawl_time"`

	// Fallback is set when the articles are placeholders.
	Fallback bool `json:"-"`
}

// ExtractRequest asks an extractor to scrape a page into the given schema.
type ExtractRequest struct {
	URL    string
	Schema map[string]any
}

// Extraction is the structured output of an extractor. A nil *Extraction
// means the backend produced nothing usable.
type Extraction struct {
	Articles []Article `json:"articles"`
}

// HistoryStatus marks the outcome of a recorded crawl.
type HistoryStatus string

// History status values.
const (
	HistoryStatusCompleted HistoryStatus = "completed"
	HistoryStatusFailed    HistoryStatus = "failed"
)

// SearchHistoryEntry records one crawl request made through the portal.
type SearchHistoryEntry struct {
	ID          string        `json:"id"`
	SubjectID   string        `json:"subject_id"`
	Keyword     string        `json:"keyword"`
	ResultCount int           `json:"result_count"`
	Fallback    bool          `json:"fallback"`
	DurationMs  int64         `json:"duration_ms"`
	Status      HistoryStatus `json:"status"`
	ErrorText   string        `json:"error_text,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// HistoryPage is one page of search history, newest first.
type HistoryPage struct {
	Entries []SearchHistoryEntry
	Total   int
}

// CrawlEvent is published after a successful crawl.
type CrawlEvent struct {
	ID         string `json:"id"`
	Keyword    string `json:"keyword"`
	TotalCount int    `json:"total_count"`
	Fallback   bool   `json:"fallback"`
	CrawlTime  string `json:"crawl_time"`
	BlobURI    string `json:"blob_uri,omitempty"`
}
