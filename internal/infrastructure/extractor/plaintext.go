package extractor

import (
	"fmt"
	"unicode/utf8"
)

func extractPlainText(raw []byte, filename string) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("invalid utf-8 content in %s", filename)
	}
	return string(raw), nil
}
