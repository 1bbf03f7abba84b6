package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

const (
	MaxAvatarSize = 2 << 20

	avatarDir       = "avatars"
	avatarURLPrefix = "/uploads/" + avatarDir + "/"
)

var imageType = regexp.MustCompile(`^image/(png|jpeg|jpg|gif|webp)$`)

// AvatarStore writes profile images under <root>/avatars. The root directory is
// served as /uploads by the HTTP router.
type AvatarStore struct {
	root string
	now  func() time.Time
}

func NewAvatarStore(root string) (*AvatarStore, error) {
	if err := os.MkdirAll(filepath.Join(root, avatarDir), 0o755); err != nil {
		return nil, fmt.Errorf("create avatar directory: %w", err)
	}
	return &AvatarStore{root: root, now: time.Now}, nil
}

func (s *AvatarStore) Root() string {
	return s.root
}

// Save stores the image as <userId>_<unixmillis>.<subtype> and returns its public URL.
func (s *AvatarStore) Save(ctx context.Context, userID uuid.UUID, contentType string, src io.Reader) (string, error) {
	m := imageType.FindStringSubmatch(contentType)
	if m == nil {
		return "", domain.ErrInvalidFile
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%d.%s", userID, s.now().UnixMilli(), m[1])
	path := filepath.Join(s.root, avatarDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(src, MaxAvatarSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxAvatarSize {
		err = domain.ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return avatarURLPrefix + name, nil
}
