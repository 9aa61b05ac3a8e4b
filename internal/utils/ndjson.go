package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize is the maximum size of a single NDJSON line (1 MB).
// The default bufio.Scanner limit is 64 KiB, which is too small for log
// lines that embed whole Lean proof attempts. Longer lines make Next return
// an error wrapping bufio.ErrTooLong.
const maxLineSize = 1 * 1024 * 1024

// LineScanner reads newline-delimited records, such as the JSON log lines a
// proving task accumulates. Blank lines are skipped.
type LineScanner struct {
	scanner *bufio.Scanner
}

// NewLineScanner creates a LineScanner reading from reader.
func NewLineScanner(reader io.Reader) *LineScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineScanner{scanner: scanner}
}

// Next returns the next non-blank line with surrounding whitespace removed.
// It returns io.EOF once the input is exhausted.
func (lineScanner *LineScanner) Next() (string, error) {
	for lineScanner.scanner.Scan() {
		line := strings.TrimSpace(lineScanner.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}

	if err := lineScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("line scanner error: %w", err)
	}
	return "", io.EOF
}
