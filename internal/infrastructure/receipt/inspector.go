package receipt

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
)

// Inspector validates payment receipt documents before the awaiting-payment
// step accepts them. PDF receipts are opened with mupdf; JPEG and PNG
// receipts are decoded directly.
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a new receipt inspector
func NewInspector(logger *zap.Logger) port.ReceiptInspector {
	return &Inspector{logger: logger}
}

// Inspect opens the receipt file and reports its shape. An unreadable or
// empty document is an error; the caller rejects the receipt.
func (i *Inspector) Inspect(path string) (*port.ReceiptInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("receipt file not found: %s", path)
	}
	if stat.Size() == 0 {
		return nil, fmt.Errorf("receipt file is empty: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return i.inspectPDF(path, stat.Size())
	case ".jpg", ".jpeg", ".png":
		return i.inspectImage(path, ext, stat.Size())
	default:
		return nil, fmt.Errorf("unsupported receipt type: %s", ext)
	}
}

func (i *Inspector) inspectPDF(path string, size int64) (*port.ReceiptInfo, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("receipt PDF has no pages")
	}

	// Render the first page to prove the document is not corrupt
	if _, err := doc.Image(0); err != nil {
		return nil, fmt.Errorf("failed to render receipt page: %w", err)
	}

	i.logger.Debug("Receipt PDF inspected",
		zap.String("path", path),
		zap.Int("pages", pages))

	return &port.ReceiptInfo{Pages: pages, FileSize: size}, nil
}

func (i *Inspector) inspectImage(path, ext string, size int64) (*port.ReceiptInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt image: %w", err)
	}
	defer file.Close()

	switch ext {
	case ".jpg", ".jpeg":
		_, err = jpeg.Decode(file)
	case ".png":
		_, err = png.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode receipt image: %w", err)
	}

	i.logger.Debug("Receipt image inspected",
		zap.String("path", path),
		zap.Int64("size_bytes", size))

	return &port.ReceiptInfo{Pages: 1, FileSize: size}, nil
}

// Verify interface compliance
var _ port.ReceiptInspector = (*Inspector)(nil)
