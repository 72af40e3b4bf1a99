package web

import (
	"bytes"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
)

// MarkdownHTML renders a description as HTML. On a conversion failure the
// raw text comes back unchanged; a broken description should not take the
// page down.
func MarkdownHTML(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return buf.String()
}

// Highlight wraps every search word found in text with <mark> tags,
// case-insensitively. Words are regex-escaped so input like "?" cannot
// break the pattern.
func Highlight(text, query string) string {
	words := strings.Fields(query)
	if text == "" || len(words) == 0 {
		return text
	}

	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile("(?i)(" + strings.Join(escaped, "|") + ")")
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "<mark>$1</mark>")
}

// TimeAgo renders a timestamp as a relative age, e.g. "3 days ago".
func TimeAgo(t time.Time) string {
	return humanize.Time(t)
}

// DaysUntil counts whole days from now until the target date. Negative
// means late; nil date yields nil.
func DaysUntil(t *time.Time, now time.Time) *int {
	if t == nil {
		return nil
	}
	d := int(math.Floor(t.Sub(now).Hours() / 24))
	return &d
}

// DaysSince counts an item's age in whole days.
func DaysSince(t time.Time, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}
