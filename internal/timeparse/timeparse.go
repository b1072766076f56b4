// Package timeparse parses the date and time spellings accepted by the
// browser UI and the date edit endpoint.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnsupportedFormat = errors.New("unsupported time format")

// Format describes one accepted layout.
type Format struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Example string `json:"example"`
}

// Layouts carrying a zone are tried first; the rest are read in the
// caller's location.
var (
	zonedFormats = []Format{
		{Name: "RFC3339Nano", Pattern: time.RFC3339Nano, Example: "2025-06-18T09:30:00.123456789+09:00"},
		{Name: "RFC3339", Pattern: time.RFC3339, Example: "2025-06-18T09:30:00+09:00"},
	}
	localFormats = []Format{
		{Name: "ISO8601 with ns", Pattern: "2006-01-02T15:04:05.999999999", Example: "2025-06-18T09:30:00.123456789"},
		{Name: "ISO8601", Pattern: "2006-01-02T15:04:05", Example: "2025-06-18T09:30:00"},
		{Name: "DateTime", Pattern: "2006-01-02 15:04:05", Example: "2025-06-18 09:30:00"},
		{Name: "Kouji", Pattern: "2006-0102", Example: "2025-0618"},
		{Name: "Date", Pattern: "2006-01-02", Example: "2025-06-18"},
		{Name: "CompactDate", Pattern: "20060102", Example: "20250618"},
		{Name: "SlashDate", Pattern: "2006/01/02", Example: "2025/06/18"},
		{Name: "DotDate", Pattern: "2006.01.02", Example: "2025.06.18"},
		{Name: "ShortSlashDate", Pattern: "2006/1/2", Example: "2025/6/18"},
		{Name: "ShortDotDate", Pattern: "2006.1.2", Example: "2025.6.18"},
	}
)

// Formats lists every accepted layout in the order Parse tries them.
func Formats() []Format {
	out := make([]Format, 0, len(zonedFormats)+len(localFormats))
	out = append(out, zonedFormats...)
	return append(out, localFormats...)
}

// Parse reads s using the first layout that matches. Values without a zone
// are interpreted in loc (UTC when nil).
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, f := range zonedFormats {
		if t, err := time.Parse(f.Pattern, s); err == nil {
			return t, nil
		}
	}
	for _, f := range localFormats {
		if t, err := time.ParseInLocation(f.Pattern, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Result is the parsed value rendered the ways the UI displays it.
type Result struct {
	Original string `json:"original"`
	RFC3339  string `json:"rfc3339"`
	Unix     int64  `json:"unix"`
	Readable string `json:"readable"`
	TimeZone string `json:"timezone"`
}

func Describe(original string, t time.Time) Result {
	return Result{
		Original: original,
		RFC3339:  t.Format(time.RFC3339),
		Unix:     t.Unix(),
		Readable: t.Format("January 2, 2006 3:04 PM"),
		TimeZone: t.Location().String(),
	}
}
