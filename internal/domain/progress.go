package domain

// IngestStatus is the stage an ingestion run is currently in. FAILED is
// absorbing and reachable from any stage.
type IngestStatus string

const (
	IngestStatusParsing   IngestStatus = "PARSING"
	IngestStatusChunking  IngestStatus = "CHUNKING"
	IngestStatusIndexing  IngestStatus = "INDEXING"
	IngestStatusCompleted IngestStatus = "COMPLETED"
	IngestStatusFailed    IngestStatus = "FAILED"
)

// ProgressEvent is the payload delivered to a progress sink as ingestion
// advances. Progress runs 0-100 and is monotonically non-decreasing within
// one ingestion run.
type ProgressEvent struct {
	Status   IngestStatus `json:"status"`
	Progress int          `json:"progress,omitempty"`
	Message  string       `json:"message,omitempty"`
	Total    int          `json:"total,omitempty"`
	Current  int          `json:"current,omitempty"`
	Error    string       `json:"error,omitempty"`
}
