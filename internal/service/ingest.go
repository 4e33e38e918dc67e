package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/relaymind/knowledgecore/internal/chunker"
	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

// Extractor converts an uploaded file into plain text.
type Extractor interface {
	Extract(ctx context.Context, fileData []byte, fileType, fileName string) (string, error)
}

// SourceArchiver stores the raw bytes of an upload before indexing.
type SourceArchiver interface {
	ArchiveSource(ctx context.Context, ownerID, containerID, contentHash, fileName string, data []byte) error
}

// ChunkConfig tunes the chunker.
type ChunkConfig struct {
	MaxLength int
	Overlap   int
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxLength: chunker.DefaultMaxLength, Overlap: chunker.DefaultOverlap}
}

// UploadInput describes one file to ingest.
type UploadInput struct {
	ContainerID string
	OwnerID     string
	FileData    []byte
	FileType    string
	FileName    string
}

// UploadResult summarizes a completed ingestion.
type UploadResult struct {
	Chunks         int    `json:"chunks"`
	ContentHash    string `json:"contentHash"`
	ContentVersion int    `json:"contentVersion"`
}

// IngestionPipeline turns uploads into embedded, versioned chunks. Progress
// events flow to the sink keyed by owner, falling back to the container.
type IngestionPipeline struct {
	extractor Extractor
	docs      *DocumentService
	archiver  SourceArchiver
	sink      ProgressSink
	chunkCfg  ChunkConfig
}

// NewIngestionPipeline wires an ingestion pipeline. archiver may be nil when
// no object storage is configured; sink may be nil to discard progress.
func NewIngestionPipeline(
	extractor Extractor,
	docs *DocumentService,
	archiver SourceArchiver,
	sink ProgressSink,
	chunkCfg ChunkConfig,
) *IngestionPipeline {
	if sink == nil {
		sink = NopSink{}
	}
	if chunkCfg.MaxLength <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &IngestionPipeline{
		extractor: extractor,
		docs:      docs,
		archiver:  archiver,
		sink:      sink,
		chunkCfg:  chunkCfg,
	}
}

// ProcessUpload runs the full pipeline for one file: extract, hash, version,
// chunk, embed and store. Zero extracted chunks completes successfully with
// a count of zero. Any extraction or storage failure emits a FAILED event
// and returns the error.
func (p *IngestionPipeline) ProcessUpload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionPipeline.ProcessUpload", telemetry.SpanAttributes{
		ContainerID: input.ContainerID,
		OwnerID:     input.OwnerID,
		Filename:    input.FileName,
		Operation:   "upload",
	})
	defer span.End()

	room := input.OwnerID
	if room == "" {
		room = input.ContainerID
	}

	p.sink.Notify(ctx, room, domain.ProgressEvent{
		Status:   domain.IngestStatusParsing,
		Progress: 10,
		Message:  fmt.Sprintf("Extracting knowledge from %s...", input.FileName),
	})

	fileType := input.FileType
	if fileType == "" {
		fileType = strings.TrimPrefix(filepath.Ext(input.FileName), ".")
	}

	content, err := p.extractor.Extract(ctx, input.FileData, fileType, input.FileName)
	if err != nil {
		p.fail(ctx, room, span, err)
		return nil, err
	}

	contentHash := ContentHash(content)
	contentVersion := p.docs.ResolveContentVersion(ctx, input.ContainerID, input.OwnerID, input.FileName, contentHash)

	if p.archiver != nil {
		// Best effort: a failed archive never blocks indexing.
		if err := p.archiver.ArchiveSource(ctx, input.OwnerID, input.ContainerID, contentHash, input.FileName, input.FileData); err != nil {
			log.Printf("ingest: failed to archive source %s: %v", input.FileName, err)
		}
	}

	p.sink.Notify(ctx, room, domain.ProgressEvent{
		Status:   domain.IngestStatusChunking,
		Progress: 30,
		Message:  "Optimizing knowledge for retrieval...",
	})

	chunks := chunker.Chunk(content, p.chunkCfg.MaxLength, p.chunkCfg.Overlap)

	p.sink.Notify(ctx, room, domain.ProgressEvent{
		Status:   domain.IngestStatusIndexing,
		Progress: 50,
		Message:  fmt.Sprintf("Indexing %d fragments...", len(chunks)),
		Total:    len(chunks),
		Current:  0,
	})

	// Each chunk is stored on its own: a mid-batch failure leaves the
	// already-stored chunks in place and the FAILED event reports it.
	for i, chunk := range chunks {
		meta := chunk.Metadata
		meta.Filename = input.FileName
		meta.ContentHash = contentHash
		meta.ContentVersion = contentVersion
		meta.Source = domain.SourceUpload

		if err := p.docs.Store(ctx, input.ContainerID, input.OwnerID, chunk.Text, meta); err != nil {
			p.fail(ctx, room, span, err)
			return nil, err
		}

		current := i + 1
		if current%5 == 0 || current == len(chunks) {
			p.sink.Notify(ctx, room, domain.ProgressEvent{
				Status:   domain.IngestStatusIndexing,
				Progress: 50 + current*45/len(chunks),
				Message:  fmt.Sprintf("Indexed %d/%d fragments", current, len(chunks)),
				Total:    len(chunks),
				Current:  current,
			})
		}
	}

	p.sink.Notify(ctx, room, domain.ProgressEvent{
		Status:   domain.IngestStatusCompleted,
		Progress: 100,
		Message:  "Knowledge synchronized successfully.",
	})
	log.Printf("ingest: processed %s (v%d) into %d chunks", input.FileName, contentVersion, len(chunks))

	return &UploadResult{
		Chunks:         len(chunks),
		ContentHash:    contentHash,
		ContentVersion: contentVersion,
	}, nil
}

func (p *IngestionPipeline) fail(ctx context.Context, room string, span *telemetry.Span, err error) {
	span.SetError(err)
	p.sink.Notify(ctx, room, domain.ProgressEvent{
		Status: domain.IngestStatusFailed,
		Error:  err.Error(),
	})
	log.Printf("ingest: processing failed: %v", err)
}
