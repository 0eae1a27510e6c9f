package services

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StorageService keeps uploads on disk for the lifetime of one request.
type StorageService interface {
	SaveFile(data []byte) (string, error)
	DeleteFile(filePath string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile writes data under a random name and returns the full path.
func (s *storageService) SaveFile(data []byte) (string, error) {
	filePath := filepath.Join(s.uploadPath, fmt.Sprintf("resume_%s.pdf", uuid.New().String()))

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

// DeleteFile removes filePath. A file that is already gone is not an error.
func (s *storageService) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		log.Printf("❌ Failed to delete temp file %s: %v", filePath, err)
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
