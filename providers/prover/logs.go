package prover

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/owlgebra/core/parse"
	"github.com/leofalp/owlgebra/internal/utils"
)

// UnknownStep groups log lines that carry no step.
const UnknownStep = "unknown"

// LogEntry is one structured log line written by a proof job.
type LogEntry struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// LogGroup holds the messages of one pipeline step in arrival order.
type LogGroup struct {
	Step     string   `json:"step"`
	Messages []string `json:"messages"`
}

// GroupLogs groups newline-delimited JSON log lines by step. Steps keep the
// order in which they first appear; lines without a step go to
// [UnknownStep]. Lines that cannot be decoded are skipped. Slightly
// malformed lines (single quotes, trailing commas) are repaired first.
func GroupLogs(logs string) []LogGroup {
	groups := []LogGroup{}
	index := map[string]int{}

	scanner := utils.NewLineScanner(strings.NewReader(logs))
	for {
		line, err := scanner.Next()
		if err != nil {
			break
		}

		entry, ok := decodeLogLine(line)
		if !ok {
			continue
		}
		step := entry.Step
		if step == "" {
			step = UnknownStep
		}

		i, seen := index[step]
		if !seen {
			i = len(groups)
			index[step] = i
			groups = append(groups, LogGroup{Step: step})
		}
		groups[i].Messages = append(groups[i].Messages, entry.Message)
	}
	return groups
}

func decodeLogLine(line string) (LogEntry, bool) {
	if !strings.HasPrefix(line, "{") {
		return LogEntry{}, false
	}
	entry, err := parse.ParseStringAs[LogEntry](line)
	if err != nil || (entry.Step == "" && entry.Message == "") {
		return LogEntry{}, false
	}
	return entry, true
}

// readEvents calls fn for each server-sent event that decodes to a
// LogEntry. It stops at the end of the stream or when fn returns an error.
func readEvents(body io.Reader, fn func(LogEntry) error) error {
	scanner := utils.NewSSEScanner(body)
	for {
		payload, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		entry, ok := decodeLogLine(payload)
		if !ok {
			continue
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}

// ParseHypotheses reads a hand-typed JSON array of hypotheses such as
// ["(n : ℕ)", "(h : 0 < n)"]. Single quotes and trailing commas are
// tolerated. Entries are trimmed and empty entries dropped.
func ParseHypotheses(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	raw, err := parse.ParseStringAs[[]string](text)
	if err != nil {
		return nil, fmt.Errorf("hypotheses must be a JSON array of strings: %w", err)
	}

	hypotheses := make([]string, 0, len(raw))
	for _, hypothesis := range raw {
		if hypothesis = strings.TrimSpace(hypothesis); hypothesis != "" {
			hypotheses = append(hypotheses, hypothesis)
		}
	}
	return hypotheses, nil
}
