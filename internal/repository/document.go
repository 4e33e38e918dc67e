// Package repository persists documents and their embeddings in PostgreSQL
// with pgvector.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/relaymind/knowledgecore/internal/domain"
)

// DocumentRepository handles persistence of documents and vector search.
type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

// Insert stores a document with its embedding. A missing ID or timestamp is
// filled in before the write.
func (r *DocumentRepository) Insert(ctx context.Context, d *domain.Document, embedding []float32) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	metadata, err := json.Marshal(d.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal document metadata: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO documents (id, container_id, owner_id, content, metadata, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.ContainerID, d.OwnerID, d.Content, metadata, pgvector.NewVector(embedding), d.CreatedAt,
	)
	return err
}

// ListByContainer returns every document in a container for an owner, newest
// first.
func (r *DocumentRepository) ListByContainer(ctx context.Context, containerID, ownerID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, container_id, owner_id, content, metadata, created_at
		 FROM documents
		 WHERE container_id = $1 AND owner_id = $2
		 ORDER BY created_at DESC`,
		containerID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// DeleteByID removes one document owned by ownerID. A missing row or a
// tenant mismatch both report not found.
func (r *DocumentRepository) DeleteByID(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// DeleteByContainer removes all of an owner's documents in a container and
// reports how many were deleted.
func (r *DocumentRepository) DeleteByContainer(ctx context.Context, containerID, ownerID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE container_id = $1 AND owner_id = $2`,
		containerID, ownerID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindVersionByHash looks for a document with the same filename and content
// hash and returns its recorded content version.
func (r *DocumentRepository) FindVersionByHash(ctx context.Context, containerID, ownerID, filename, contentHash string) (int, bool, error) {
	var metadata []byte
	err := r.db.QueryRow(ctx,
		`SELECT metadata FROM documents
		 WHERE container_id = $1 AND owner_id = $2
		   AND metadata->>'filename' = $3 AND metadata->>'contentHash' = $4
		 LIMIT 1`,
		containerID, ownerID, filename, contentHash,
	).Scan(&metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var m domain.ChunkMetadata
	if err := json.Unmarshal(metadata, &m); err != nil {
		return 0, false, fmt.Errorf("failed to unmarshal document metadata: %w", err)
	}
	if m.ContentVersion <= 0 {
		return 1, true, nil
	}
	return m.ContentVersion, true, nil
}

// MaxContentVersion returns the highest content version recorded for a
// filename, or zero when none exists.
func (r *DocumentRepository) MaxContentVersion(ctx context.Context, containerID, ownerID, filename string) (int, error) {
	var version *int
	err := r.db.QueryRow(ctx,
		`SELECT MAX((metadata->>'contentVersion')::int) FROM documents
		 WHERE container_id = $1 AND owner_id = $2 AND metadata->>'filename' = $3`,
		containerID, ownerID, filename,
	).Scan(&version)
	if err != nil {
		return 0, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// SearchSimilar returns documents whose cosine similarity to the query
// vector exceeds threshold, most similar first.
func (r *DocumentRepository) SearchSimilar(ctx context.Context, containerID, ownerID string, embedding []float32, threshold float64, limit int) ([]domain.SearchResult, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, container_id, owner_id, content, metadata, created_at,
		        1 - (embedding <=> $3) AS similarity
		 FROM documents
		 WHERE container_id = $1 AND owner_id = $2
		   AND 1 - (embedding <=> $3) > $4
		 ORDER BY similarity DESC
		 LIMIT $5`,
		containerID, ownerID, vec, threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

// likeEscaper neutralizes LIKE metacharacters so the lexical arm of the
// hybrid query matches the query string literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// HybridSearch combines a keyword match with vector similarity: a row
// qualifies if the query appears literally in its content or its similarity
// clears 0.5, and results are ordered by vector distance.
func (r *DocumentRepository) HybridSearch(ctx context.Context, containerID, ownerID, query string, embedding []float32, limit int) ([]domain.SearchResult, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, container_id, owner_id, content, metadata, created_at,
		        1 - (embedding <=> $4) AS similarity
		 FROM documents
		 WHERE container_id = $1 AND owner_id = $2
		   AND (content ILIKE '%' || $3 || '%' OR 1 - (embedding <=> $4) > 0.5)
		 ORDER BY embedding <=> $4 ASC
		 LIMIT $5`,
		containerID, ownerID, likeEscaper.Replace(query), vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

func scanDocuments(rows pgx.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		var metadata []byte
		if err := rows.Scan(&d.ID, &d.ContainerID, &d.OwnerID, &d.Content, &metadata, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document metadata: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func scanSearchResults(rows pgx.Rows) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	for rows.Next() {
		var res domain.SearchResult
		var metadata []byte
		if err := rows.Scan(&res.ID, &res.ContainerID, &res.OwnerID, &res.Content, &metadata, &res.CreatedAt, &res.Similarity); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &res.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document metadata: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
