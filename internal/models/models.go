package models

import "time"

// Page is one unit of text extracted from an uploaded document.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded-length text window with its source page metadata.
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// Stats describes one completed ingestion.
type Stats struct {
	Pages          int     `json:"pages"`
	Chunks         int     `json:"chunks"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	ChunkSize      int     `json:"chunk_size"`
	ChunkOverlap   int     `json:"chunk_overlap"`
}

// QAEntry is one question/answer exchange. Entries are append-only.
type QAEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
}

// Result is the tagged outcome of the query path. A per-question
// failure is carried in Err as a user-facing string, never raised.
type Result struct {
	Answer string `json:"answer,omitempty"`
	Err    string `json:"error,omitempty"`
}

func (r Result) Failed() bool { return r.Err != "" }
