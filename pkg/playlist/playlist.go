// Package playlist parses M3U channel lists: #EXTINF metadata lines paired
// with the stream URL on the following line.
package playlist

import (
	"fmt"
	"regexp"
	"strings"
)

// Entry is one parsed playlist entry: a metadata line plus its stream URL.
type Entry struct {
	TvgID      string
	TvgName    string
	TvgLogo    string
	GroupTitle string
	Name       string // trailing display name after the final comma
	URL        string
}

// ParseError reports a metadata line that does not match the minimum
// required shape. It is recorded per entry; it never aborts a batch.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed metadata line: %s", e.Line)
}

// attrRE extracts key="value" attributes from the #EXTINF line.
// Any subset of tvg-id, tvg-name, tvg-logo, group-title may be present.
var attrRE = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

const extinfPrefix = "#EXTINF:"

// DefaultGroup is used when a metadata line carries no group-title attribute.
const DefaultGroup = "Sem Grupo"

// ParseExtinf parses one #EXTINF metadata line. The display name after the
// final comma is mandatory; everything else is optional. The returned
// Entry has no URL; callers pair it with the following stream line.
func ParseExtinf(line string) (*Entry, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, extinfPrefix) {
		return nil, &ParseError{Line: line}
	}

	comma := strings.LastIndex(line, ",")
	if comma < 0 {
		return nil, &ParseError{Line: line}
	}
	name := strings.TrimSpace(line[comma+1:])
	if name == "" {
		return nil, &ParseError{Line: line}
	}

	e := &Entry{Name: name, GroupTitle: DefaultGroup}
	for _, m := range attrRE.FindAllStringSubmatch(line[:comma], -1) {
		switch m[1] {
		case "tvg-id":
			e.TvgID = m[2]
		case "tvg-name":
			e.TvgName = m[2]
		case "tvg-logo":
			e.TvgLogo = m[2]
		case "group-title":
			e.GroupTitle = m[2]
		}
	}
	return e, nil
}

// Title returns the raw display title for an entry: the trailing display
// name, falling back to tvg-name, then a fixed placeholder.
func (e *Entry) Title() string {
	if t := strings.TrimSpace(e.Name); t != "" {
		return t
	}
	if t := strings.TrimSpace(e.TvgName); t != "" {
		return t
	}
	return "Sem Título"
}
