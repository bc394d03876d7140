package manifest

import "time"

// Artifact is one file written by a report run.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // chart|summary|workbook
	Title     string    `json:"title"`
	Path      string    `json:"path"` // relative to the output directory
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Skipped records a chart that could not be produced and why.
type Skipped struct {
	Chart  string `json:"chart"`
	Reason string `json:"reason"`
}
