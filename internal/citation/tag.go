package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/luminakb/lumina/internal/domain"
)

// Citation tags are the wire format the model is instructed to emit:
//
//	{{ref:<sourceType>:<title>:<locationValue>}}
//
// sourceType is one of youtube/pdf/txt/ppt/pptx, title is free text
// containing neither ':' nor '}', and locationValue is an integer or
// MM:SS. The grammar is keyed purely on sourceType; every medium uses
// the same three-field shape.
var (
	tagRe    = regexp.MustCompile(`\{\{ref:[^}]+\}\}`)
	markerRe = regexp.MustCompile(`__REF_MARKER_(\d+)__`)
)

// FormatTag renders the citation tag for a source
func FormatTag(src domain.Source) string {
	return fmt.Sprintf("{{ref:%s:%s:%d}}", src.Type, sanitizeTitle(src.Title), src.Location.Value)
}

// Marker renders the positional marker substituted for a resolved tag
func Marker(index int) string {
	return fmt.Sprintf("__REF_MARKER_%d__", index)
}

// sanitizeTitle strips the characters the tag grammar reserves
func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, ":", "")
	title = strings.ReplaceAll(title, "}", "")
	return strings.TrimSpace(title)
}

type parsedTag struct {
	sourceType domain.SourceType
	title      string
	value      int
}

// parseTag splits a tag body (the text between "{{ref:" and "}}") into
// its fields. The title carries no colons, so the first field is the
// type, the second is the title, and everything after the second colon
// is the location value, which may itself contain a colon (MM:SS).
func parseTag(body string) (parsedTag, bool) {
	parts := strings.SplitN(body, ":", 3)
	if len(parts) != 3 {
		return parsedTag{}, false
	}
	if !domain.IsValidSourceType(parts[0]) {
		return parsedTag{}, false
	}
	value, ok := ParseLocationValue(parts[2])
	if !ok {
		return parsedTag{}, false
	}
	return parsedTag{
		sourceType: domain.SourceType(parts[0]),
		title:      strings.TrimSpace(parts[1]),
		value:      value,
	}, true
}

// ParseLocationValue parses a location value: either a plain integer or
// an MM:SS timestamp converted to total seconds.
func ParseLocationValue(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) != 2 {
			return 0, false
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || minutes < 0 {
			return 0, false
		}
		seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, false
		}
		return minutes*60 + seconds, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
