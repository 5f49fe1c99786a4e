//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlabs/coachkb/internal/testutil"
)

func TestArchiveIntegration(t *testing.T) {
	ctx := context.Background()

	s3Container := testutil.NewRustFSContainer(ctx, t)
	defer s3Container.Terminate(ctx)

	archive, err := NewArchive(ctx, ArchiveConfig{
		Endpoint:        s3Container.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-archive",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, archive.EnsureBucket(ctx))

	documentID := uuid.NewString()
	content := "Raw document content for archival."

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, archive.PutDocumentContent(ctx, documentID, content))

		got, err := archive.GetDocumentContent(ctx, documentID)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		require.NoError(t, archive.PutDocumentContent(ctx, documentID, "replaced"))

		got, err := archive.GetDocumentContent(ctx, documentID)
		require.NoError(t, err)
		assert.Equal(t, "replaced", got)
	})

	t.Run("get after delete fails", func(t *testing.T) {
		require.NoError(t, archive.DeleteDocumentContent(ctx, documentID))

		_, err := archive.GetDocumentContent(ctx, documentID)
		assert.Error(t, err)
	})

	t.Run("ensure bucket is idempotent", func(t *testing.T) {
		assert.NoError(t, archive.EnsureBucket(ctx))
	})
}
