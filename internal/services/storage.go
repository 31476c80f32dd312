package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrStorageUnavailable = errors.New("document store unavailable")
	ErrStorageWriteFailed = errors.New("document store write failed")
	ErrBlobNotFound       = errors.New("stored document not found")
)

// DocumentStore keeps uploaded blobs. Every Put yields a fresh reference, so repeating a
// failed write is safe.
type DocumentStore interface {
	Put(ctx context.Context, data []byte, contentType, filename string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

type LocalDocumentStore struct {
	uploadPath string
}

func NewLocalDocumentStore(uploadPath string) *LocalDocumentStore {
	return &LocalDocumentStore{
		uploadPath: uploadPath,
	}
}

func (s *LocalDocumentStore) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("%w: failed to create upload directory: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *LocalDocumentStore) Put(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.EnsureUploadDir(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ref := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, ref)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	return ref, nil
}

func (s *LocalDocumentStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath, err := s.pathFor(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return data, nil
}

func (s *LocalDocumentStore) Delete(_ context.Context, ref string) error {
	filePath, err := s.pathFor(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalDocumentStore) pathFor(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("%w: invalid reference %q", ErrBlobNotFound, ref)
	}
	return filepath.Join(s.uploadPath, ref), nil
}

// ContentTypeFor maps an accepted filename extension to its MIME type.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
