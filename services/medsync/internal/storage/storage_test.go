package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"medsync/services/medsync/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

var gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func TestProfileKey(t *testing.T) {
	key := ProfileKey(time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC), ".png")
	assert.Regexp(t, regexp.MustCompile(`^profiles/2026/10/08/[0-9a-f-]{36}\.png$`), key)
}

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		mime    string
		ext     string
		wantErr bool
	}{
		{"png", pngHeader, "image/png", ".png", false},
		{"gif", gifHeader, "image/gif", ".gif", false},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg", ".jpg", false},
		{"text", []byte("hello, not an image"), "", "", true},
		{"pdf", []byte("%PDF-1.7\n"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtype, ext, err := DetectImage(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mime, mtype)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "profiles/2026/10/18/a.png", "image/png", bytes.NewReader(pngHeader)))
	got, err := os.ReadFile(filepath.Join(root, "profiles", "2026", "10", "18", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)

	require.NoError(t, store.Delete(ctx, "profiles/2026/10/18/a.png"))
	require.NoError(t, store.Delete(ctx, "profiles/2026/10/18/a.png"), "deleting twice is fine")

	assert.Error(t, store.Put(ctx, "../escape.png", "image/png", bytes.NewReader(pngHeader)))
}

func TestSavePicture(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	root := t.TempDir()
	store := NewLocalStore(root)

	key, err := SavePicture(context.Background(), store, bytes.NewReader(gifHeader), now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "profiles/2026/10/18/"))
	assert.True(t, strings.HasSuffix(key, ".gif"))
	assert.FileExists(t, filepath.Join(root, filepath.FromSlash(key)))

	_, err = SavePicture(context.Background(), store, strings.NewReader("#!/bin/sh\nrm -rf /"), now)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := io.MultiReader(bytes.NewReader(pngHeader), bytes.NewReader(make([]byte, MaxPictureSize)))
	_, err = SavePicture(context.Background(), store, big, now)
	assert.ErrorIs(t, err, ErrTooLarge)
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	body    []byte
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3StoreWithClient(fake, "medsync-profiles")
	ctx := context.Background()

	key, err := SavePicture(ctx, store, bytes.NewReader(pngHeader), time.Now())
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "medsync-profiles", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, key, aws.ToString(fake.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, pngHeader, fake.body)

	require.NoError(t, store.Delete(ctx, key))
	assert.Equal(t, []string{key}, fake.deletes)

	fake.err = errors.New("access denied")
	assert.ErrorIs(t, store.Put(ctx, "k", "image/png", bytes.NewReader(pngHeader)), fake.err)
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	store, err = New(context.Background(), config.StorageConfig{Driver: "s3", S3: config.S3Config{
		Endpoint: "http://127.0.0.1:9000", Bucket: "b", AccessKey: "minio", SecretKey: "minio123", UsePathStyle: true,
	}})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	_, err = New(context.Background(), config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
