package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// StdinAdapter reads toasts from a reader, usually standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a StdinAdapter reading from r.
func NewStdinAdapter(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads all toasts from the reader. Supported formats:
//  1. a JSON array of {"title","content","icon","color"} objects
//  2. one such JSON object per line
//  3. plain text, one title per line
//
// Entries without a title are skipped.
func (a *StdinAdapter) Import(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := a.Stream(ctx, func(n model.Notification) error {
		notifications = append(notifications, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// Stream reads toasts from the reader and calls fn for each one as soon as
// it is parsed. JSON lines and plain text are delivered line by line, so an
// endless reader such as a followed log keeps producing toasts. A JSON array
// is delivered once the reader is exhausted. The format is chosen by the
// first non-blank line.
func (a *StdinAdapter) Stream(ctx context.Context, fn func(model.Notification) error) error {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var (
		format     byte
		arrayLines []string
		lineNo     int
	)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := scanner.Text()

		if format == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			format = trimmed[0]
		}

		switch format {
		case '[':
			arrayLines = append(arrayLines, line)
		case '{':
			n, ok, err := parseJSONLine(line, lineNo)
			if err != nil {
				return err
			}
			if ok {
				if err := fn(n); err != nil {
					return err
				}
			}
		default:
			if title := sanitizeString(line); title != "" {
				if err := fn(model.Notification{Title: title}); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}

	if format != '[' {
		return nil
	}
	notifications, err := parseJSONArray(bytes.TrimSpace([]byte(strings.Join(arrayLines, "\n"))))
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// stdinEntry is the JSON form of a toast.
type stdinEntry struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Color   string `json:"color,omitempty"`
}

func parseJSONArray(data []byte) ([]model.Notification, error) {
	var entries []stdinEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}

	var notifications []model.Notification
	for _, entry := range entries {
		if n, ok := convertStdinEntry(entry); ok {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

func parseJSONLine(line string, lineNo int) (model.Notification, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Notification{}, false, nil
	}
	var entry stdinEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return model.Notification{}, false, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse JSON line " + strconv.Itoa(lineNo),
			Err:     err,
		}
	}
	n, ok := convertStdinEntry(entry)
	return n, ok, nil
}

func convertStdinEntry(entry stdinEntry) (model.Notification, bool) {
	title := sanitizeString(entry.Title)
	if title == "" {
		return model.Notification{}, false
	}
	return model.Notification{
		Title:   title,
		Content: sanitizeString(entry.Content),
		Icon:    model.Icon(strings.TrimSpace(entry.Icon)),
		Color:   model.Color(strings.TrimSpace(entry.Color)),
	}, true
}

// sanitizeString replaces control characters other than newline and tab
// with spaces and trims the result.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
