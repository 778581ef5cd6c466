package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

var ErrUnsupportedMediaType = errors.New("unsupported media type")

// mediaExtensions maps the accepted exercise media types to file extensions.
var mediaExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
}

// MediaPrefix is the key prefix under which a student's exercise media live.
func MediaPrefix(studentID primitive.ObjectID) string {
	return "students/" + studentID.Hex() + "/media/"
}

// NewMediaKey returns a fresh object key for an exercise demonstration
// upload. Only video/* and image/* types are accepted.
func NewMediaKey(studentID primitive.ObjectID, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "video/") && !strings.HasPrefix(ct, "image/") {
		return "", ErrUnsupportedMediaType
	}
	return MediaPrefix(studentID) + uuid.NewString() + mediaExtensions[ct], nil
}

// OwnsKey reports whether objectKey belongs to studentID's media prefix.
func OwnsKey(studentID primitive.ObjectID, objectKey string) bool {
	rest, ok := strings.CutPrefix(objectKey, MediaPrefix(studentID))
	return ok && rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}
