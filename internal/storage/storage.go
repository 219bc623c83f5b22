package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bilgisen/radiocast/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PublicPrefix is the path uploads are served under
const PublicPrefix = "/uploads/"

// ErrNotFound is returned when a key does not exist in the store
var ErrNotFound = errors.New("media not found")

var (
	extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
	keyPattern = regexp.MustCompile(`^[a-f0-9]{32}(\.[a-z0-9]{1,10})?$`)
)

// Store persists uploaded files and reads them back by key
type Store interface {
	// Save writes the content and returns the generated key (the stored filename)
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (*Object, error)
}

// Object is an opened upload. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// URL builds the public address of a stored file: {scheme}://{host}/uploads/{key}
func URL(scheme, host, key string) string {
	return scheme + "://" + host + PublicPrefix + key
}

// ValidKey reports whether key looks like something Save produced
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// sniff reads the first bytes of r for type detection and returns a reader
// that still yields the whole content.
func sniff(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, err
	}
	head = head[:n]
	return mimetype.Detect(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// newKey names a file the way multer does: random hex, keeping the extension
func newKey(originalName string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		ext = detected.Extension()
	}
	if !extPattern.MatchString(ext) {
		ext = ""
	}

	seed := originalName + uuid.NewString() + time.Now().Format(time.RFC3339Nano)
	return utils.Hash(seed)[:32] + ext
}
