package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var allowedReceiptExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ReceiptStore persists uploaded payment receipts on the local filesystem,
// one directory per protocol
type ReceiptStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewReceiptStore creates a new receipt store rooted at baseDir
func NewReceiptStore(baseDir string, logger *zap.Logger) *ReceiptStore {
	return &ReceiptStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes an uploaded receipt and returns its stored path. The filename
// is flattened to its base name; only document and image extensions are
// accepted.
func (s *ReceiptStore) Save(protocolID int64, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("receipt content is empty")
	}

	name := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedReceiptExtensions[ext] {
		return "", fmt.Errorf("unsupported receipt type: %s", ext)
	}

	fullPath := filepath.Join(s.baseDir, fmt.Sprintf("protocol_%d", protocolID), name)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create receipt directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.Int64("protocol_id", protocolID),
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return fullPath, nil
}

// validatePath checks that the path stays within baseDir
func (s *ReceiptStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes receipt directory: %s", fullPath)
	}

	return nil
}
