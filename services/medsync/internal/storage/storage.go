// Package storage keeps uploaded profile pictures on local disk or in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"medsync/services/medsync/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxPictureSize is the largest accepted upload.
const MaxPictureSize = 2 << 20

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes and removes objects by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// New builds the Store selected by conf.Driver.
func New(ctx context.Context, conf config.StorageConfig) (Store, error) {
	switch conf.Driver {
	case "", "local":
		return NewLocalStore(conf.LocalPath), nil
	case "s3":
		return NewS3Store(ctx, conf.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", conf.Driver)
	}
}

// ProfileKey is profiles/YYYY/MM/DD/<uuid><ext>.
func ProfileKey(now time.Time, ext string) string {
	return fmt.Sprintf("profiles/%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), ext)
}

// DetectImage sniffs data and returns its MIME type and extension when it
// is one of the accepted image formats.
func DetectImage(data []byte) (string, string, error) {
	mtype := mimetype.Detect(data).String()
	ext, ok := extensions[mtype]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype)
	}
	return mtype, ext, nil
}

// SaveProfilePicture validates fh and stores it, returning the key.
func SaveProfilePicture(ctx context.Context, store Store, fh *multipart.FileHeader, now time.Time) (string, error) {
	if fh.Size > MaxPictureSize {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return SavePicture(ctx, store, f, now)
}

// SavePicture reads at most MaxPictureSize bytes from r, checks the type
// and stores it under a fresh profile key.
func SavePicture(ctx context.Context, store Store, r io.Reader, now time.Time) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPictureSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxPictureSize {
		return "", ErrTooLarge
	}

	mtype, ext, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	key := ProfileKey(now, ext)
	if err := store.Put(ctx, key, mtype, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}
	return key, nil
}
