package service

import (
	"context"
	"log"

	"github.com/relaymind/knowledgecore/internal/chunker"
	"github.com/relaymind/knowledgecore/internal/domain"
	"github.com/relaymind/knowledgecore/internal/telemetry"
)

// VideoTranscriber turns a public video URL into a transcript.
type VideoTranscriber interface {
	TranscribeVideo(ctx context.Context, url string) (string, error)
}

// YouTubeService ingests video content by transcribing it and storing the
// chunks like any other source.
type YouTubeService struct {
	transcriber VideoTranscriber
	docs        *DocumentService
	chunkCfg    ChunkConfig
}

func NewYouTubeService(transcriber VideoTranscriber, docs *DocumentService, chunkCfg ChunkConfig) *YouTubeService {
	if chunkCfg.MaxLength <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &YouTubeService{transcriber: transcriber, docs: docs, chunkCfg: chunkCfg}
}

// ProcessVideo transcribes url and stores the chunks in the container. It
// returns how many chunks were stored.
func (s *YouTubeService) ProcessVideo(ctx context.Context, containerID, ownerID, url string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "YouTubeService.ProcessVideo", telemetry.SpanAttributes{
		ContainerID: containerID,
		OwnerID:     ownerID,
		Operation:   "youtube",
	})
	defer span.End()

	transcript, err := s.transcriber.TranscribeVideo(ctx, url)
	if err != nil {
		span.SetError(err)
		return 0, domain.NewExtractionFailedError("failed to extract content from video", err)
	}

	chunks := chunker.Chunk(transcript, s.chunkCfg.MaxLength, s.chunkCfg.Overlap)
	for _, chunk := range chunks {
		meta := chunk.Metadata
		meta.Source = domain.SourceYouTube
		meta.URL = url
		if err := s.docs.Store(ctx, containerID, ownerID, chunk.Text, meta); err != nil {
			span.SetError(err)
			return 0, err
		}
	}

	log.Printf("youtube: stored %s as %d chunks", url, len(chunks))
	return len(chunks), nil
}
