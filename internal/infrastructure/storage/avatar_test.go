package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAvatar(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	id := uuid.New()

	url, err := store.Save(context.Background(), id, "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/"+id.String()+"_1700000000000.jpeg", url)

	data, err := os.ReadFile(filepath.Join(store.Root(), "avatars", id.String()+"_1700000000000.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestSaveAvatarRejectsType(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	require.NoError(t, err)

	for _, ct := range []string{"text/plain", "image/svg+xml", ""} {
		_, err := store.Save(context.Background(), uuid.New(), ct, strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidFile, ct)
	}
}

func TestSaveAvatarTooLarge(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	require.NoError(t, err)

	big := bytes.Repeat([]byte{1}, MaxAvatarSize+1)
	_, err = store.Save(context.Background(), uuid.New(), "image/png", bytes.NewReader(big))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	entries, err := os.ReadDir(filepath.Join(store.Root(), "avatars"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = store.Save(context.Background(), uuid.New(), "image/png", bytes.NewReader(big[:MaxAvatarSize]))
	assert.NoError(t, err)
}
