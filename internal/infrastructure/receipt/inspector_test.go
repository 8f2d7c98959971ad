package receipt

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestInspector(t *testing.T) *Inspector {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return &Inspector{logger: logger}
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "comprovante.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer file.Close()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestInspectImage(t *testing.T) {
	inspector := newTestInspector(t)
	path := writePNG(t, t.TempDir())

	info, err := inspector.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if info.Pages != 1 {
		t.Errorf("Pages = %d, want 1", info.Pages)
	}
	if info.FileSize == 0 {
		t.Error("FileSize should be recorded")
	}
}

func TestInspectRejections(t *testing.T) {
	inspector := newTestInspector(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("failed to write empty file: %v", err)
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	unsupported := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unsupported, []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to write text file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.pdf")},
		{"empty file", empty},
		{"undecodable image", garbage},
		{"unsupported extension", unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := inspector.Inspect(tt.path); err == nil {
				t.Errorf("Inspect(%s) should fail", tt.path)
			}
		})
	}
}
