package analysis

import "time"

// RecordID identifier assigned by the store
type RecordID int64

// Result is the output of one pipeline run
type Result struct {
	Text             string  `json:"-"`
	Summary          string  `json:"summary"`
	Model            string  `json:"model,omitempty"`
	InputWordCount   int     `json:"input_word_count"`
	MaxLength        int     `json:"max_length"`
	MinLength        int     `json:"min_length"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	ProcessingTime   float64 `json:"processing_time"` // seconds
}

// Document is the deduplicated source text, keyed by its content hash
type Document struct {
	TextHash string `json:"text_hash"`
	Content  string `json:"content"`
}

// Record is one persisted analysis joined with its source text
type Record struct {
	ID             RecordID  `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	TextHash       string    `json:"text_hash"`
	OriginalLength int       `json:"original_length"`
	Summary        string    `json:"summary"`
	ProcessingTime float64   `json:"processing_time"`
	Content        string    `json:"content,omitempty"`
}

// Stats aggregates a bounded slice of history.
// Averages are nil when there is nothing to average.
type Stats struct {
	TotalAnalyses       int      `json:"total_analyses"`
	AvgProcessingTime   *float64 `json:"avg_processing_time"`
	AvgCompressionRatio *float64 `json:"avg_compression_ratio"` // summary/original, see Aggregate
	CompressionDisplay  *float64 `json:"compression_display"`   // original:summary, 1/AvgCompressionRatio
}

// History is what the history view renders
type History struct {
	Records []*Record `json:"records"`
	Stats   Stats     `json:"stats"`
}
