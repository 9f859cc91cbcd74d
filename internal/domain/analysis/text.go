package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxInputLength caps the characters handed to the model.
	DefaultMaxInputLength = 10000

	maxLengthRatio = 0.3
	minLengthRatio = 0.1

	maxLengthFloor   = 50
	maxLengthCeiling = 300
	minLengthFloor   = 30
	minLengthCeiling = 100
)

// Bounds are generation lengths in model tokens, not characters.
type Bounds struct {
	MaxLength int
	MinLength int
}

// TextHash returns the hex SHA-256 digest of text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Normalize trims surrounding whitespace and cuts the text to at most limit characters.
// Characters are runes. A non-positive limit means DefaultMaxInputLength.
func Normalize(raw string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxInputLength
	}
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharCount counts characters the way lengths are reported and stored.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// LengthBounds derives generation bounds from the input word count.
func LengthBounds(words int) Bounds {
	return Bounds{
		MaxLength: clamp(int(math.Round(float64(words)*maxLengthRatio)), maxLengthFloor, maxLengthCeiling),
		MinLength: clamp(int(math.Round(float64(words)*minLengthRatio)), minLengthFloor, minLengthCeiling),
	}
}

// CompressionRatio is original/summary, guarded against an empty summary.
func CompressionRatio(originalLength, summaryLength int) float64 {
	return float64(originalLength) / float64(max(1, summaryLength))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
