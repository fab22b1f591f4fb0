package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"docclassifier/internal/core/domain"
)

type fakeStorage struct {
	objects map[string][]byte
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %q", key)
	}
	return io.NopCloser(strings.NewReader(string(raw))), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func TestExtractPlainText(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{
		"doc-1": []byte("  invoice total $500  \n"),
	}}
	ext := New(storage)

	text, err := ext.Extract(context.Background(), "doc-1", "invoice.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "invoice total $500" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsBinaryTxt(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{
		"doc-1": {0xff, 0xfe, 0x00, 0x01},
	}}
	ext := New(storage)

	if _, err := ext.Extract(context.Background(), "doc-1", "notes.txt"); err == nil {
		t.Fatalf("expected error for non-utf8 content")
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{
		"doc-1": []byte("whatever"),
	}}
	ext := New(storage)

	_, err := ext.Extract(context.Background(), "doc-1", "archive.tar.gz")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractMissingObject(t *testing.T) {
	ext := New(&fakeStorage{})
	if _, err := ext.Extract(context.Background(), "nope", "a.txt"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
