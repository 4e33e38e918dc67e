//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/knowledgecore/internal/testutil"
)

func TestS3ClientIntegration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-sources",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	data := []byte("raw upload bytes")

	t.Run("archive and fetch", func(t *testing.T) {
		require.NoError(t, client.ArchiveSource(ctx, "u1", "c1", "hash1", "doc.pdf", data))

		got, err := client.FetchSource(ctx, "u1", "c1", "hash1", "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("archive is idempotent per content hash", func(t *testing.T) {
		require.NoError(t, client.ArchiveSource(ctx, "u1", "c1", "hash2", "doc.pdf", data))
		require.NoError(t, client.ArchiveSource(ctx, "u1", "c1", "hash2", "doc.pdf", data))

		got, err := client.FetchSource(ctx, "u1", "c1", "hash2", "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.ArchiveSource(ctx, "u1", "c1", "hash3", "doc.pdf", data))
		require.NoError(t, client.DeleteSource(ctx, "u1", "c1", "hash3", "doc.pdf"))

		_, err := client.FetchSource(ctx, "u1", "c1", "hash3", "doc.pdf")
		assert.Error(t, err)
	})
}
