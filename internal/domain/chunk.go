package domain

import "time"

// Source identifies where a chunk's content originally came from.
type Source string

const (
	SourceUpload  Source = "upload"
	SourceWebsite Source = "website"
	SourceYouTube Source = "youtube"
)

// ChunkMetadata describes a chunk's position within its source document and
// the identity of the upload it was produced from. It is stored as JSONB next
// to the chunk text.
type ChunkMetadata struct {
	ChunkIndex     int    `json:"chunkIndex"`
	TotalChunks    int    `json:"totalChunks"`
	ChunkSize      int    `json:"chunkSize"`
	StartPosition  int    `json:"startPosition"`
	EndPosition    int    `json:"endPosition"`
	Section        string `json:"section,omitempty"`
	Filename       string `json:"filename,omitempty"`
	ContentHash    string `json:"contentHash,omitempty"`
	ContentVersion int    `json:"contentVersion,omitempty"`
	Source         Source `json:"source,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Chunk is one segment of a source document as produced by the chunker,
// before it is embedded and persisted.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
}

// Document is a stored chunk: text, metadata and embedding, scoped to a
// knowledge container (agent or campaign) and its owner. Rows are immutable
// once written; they are only ever deleted.
type Document struct {
	ID          string
	ContainerID string
	OwnerID     string
	Content     string
	Metadata    ChunkMetadata
	CreatedAt   time.Time
}

// SearchResult is a stored document annotated with its cosine similarity to
// the query vector.
type SearchResult struct {
	Document
	Similarity float64
}

// QueryContext is the grounding block assembled for a chat turn.
type QueryContext struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}
