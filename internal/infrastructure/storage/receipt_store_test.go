package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *ReceiptStore {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewReceiptStore(t.TempDir(), logger)
}

func TestReceiptStoreSave(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(42, "comprovante.pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.Contains(path, filepath.Join("protocol_42", "comprovante.pdf")) {
		t.Errorf("unexpected stored path: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(content) != "%PDF-1.4 fake" {
		t.Errorf("stored content = %q", content)
	}
}

func TestReceiptStoreFlattensDirectories(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(1, "uploads/2026/comprovante.png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if filepath.Base(path) != "comprovante.png" {
		t.Errorf("filename not flattened: %s", path)
	}
}

func TestReceiptStoreRejectsBadInput(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"empty content", "comprovante.pdf", nil},
		{"executable extension", "comprovante.exe", []byte("MZ")},
		{"no extension", "comprovante", []byte("data")},
		{"traversal in name", "../../etc/passwd.pdf", []byte("data")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := store.Save(1, tt.filename, tt.content)
			if tt.name == "traversal in name" {
				// the base-name flattening neutralizes the traversal
				if err != nil {
					t.Fatalf("Save returned error: %v", err)
				}
				if strings.Contains(path, "..") {
					t.Errorf("stored path kept traversal: %s", path)
				}
				return
			}
			if err == nil {
				t.Errorf("Save(%q) should fail", tt.filename)
			}
		})
	}
}
