package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/core/ports"
)

// Extractor pulls plain text out of stored documents, dispatching on the
// original filename's extension. The stored object is read fully into memory;
// uploads are size-capped at ingest so this stays bounded.
type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, storageKey, filename string) (string, error) {
	reader, err := e.storage.Open(ctx, storageKey)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(raw)
	case ".docx":
		text, err = extractDOCX(raw)
	case ".xlsx":
		text, err = extractXLSX(raw)
	case ".txt", ".md":
		text, err = extractPlainText(raw, filename)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("no extractor for %q", filename))
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return strings.TrimSpace(text), nil
}
