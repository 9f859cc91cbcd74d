package middleware

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input validation for contract submissions

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidText          = errors.New("text is not valid UTF-8")
)

const maxLimit = 500

// ValidateUpload accepts plain-text uploads only. PDF and Word need extraction libraries this service does not carry.
func ValidateUpload(filename, contentType string, size, maxBytes int64) error {
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, size, maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".doc", ".docx":
		return fmt.Errorf("%w: PDF/Word support requires additional libraries, upload a .txt file or paste the text", ErrUnsupportedMediaType)
	}

	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
		}
		mediaType = mt
	}
	if mediaType == "text/plain" || (ext == ".txt" && (mediaType == "" || mediaType == "application/octet-stream")) {
		return nil
	}
	return fmt.Errorf("%w: %q, only text/plain is accepted", ErrUnsupportedMediaType, mediaType)
}

// ValidateText rejects invalid UTF-8 and strips NUL bytes
func ValidateText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidText
	}
	return SanitizeString(string(b)), nil
}

// SanitizeString removes NUL bytes; everything else is the contract as written
func SanitizeString(input string) string {
	return strings.ReplaceAll(input, "\x00", "")
}

// ValidateLimit parses a ?limit= value. Empty means 0 (caller default); the max is 500.
func ValidateLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if limit > maxLimit {
		return maxLimit, nil
	}
	return limit, nil
}
