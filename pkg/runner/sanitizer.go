package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds a single resolver argument (URLs included).
	DefaultMaxInputSize = 2048
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "COREDATA_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	ErrControlChars  = errors.New("input contains control characters")
	ErrEmptyInput    = errors.New("input is empty")
)

// SanitizeInput validates an argument received from outside (HTTP, MCP, CLI) before it is
// handed to a resolver: surrounding whitespace is trimmed, and empty, oversized, invalid
// UTF-8 or control-character input is rejected.
// Arguments end up in request paths and log lines, so nothing is silently rewritten.
func SanitizeInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}

	limit := getMaxInputSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if i := strings.IndexFunc(input, unicode.IsControl); i >= 0 {
		return "", fmt.Errorf("%w: at byte %d", ErrControlChars, i)
	}
	return input, nil
}

// SanitizeInputs applies SanitizeInput to each argument in place.
func SanitizeInputs(inputs ...*string) error {
	for _, in := range inputs {
		clean, err := SanitizeInput(*in)
		if err != nil {
			return err
		}
		*in = clean
	}
	return nil
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
