package playlist

import (
	"bufio"
	"io"
	"strings"
)

// Item is a qualifying record found by Scanner: a metadata line whose next
// non-blank line starts with a URL scheme. Raw is kept unparsed so malformed
// metadata lines still occupy an index and can be reported per entry.
type Item struct {
	Raw   string // metadata line, trimmed
	URL   string // stream URL line, trimmed
	Index int    // zero-based position among qualifying records
}

// Scanner streams qualifying entries from a playlist. Memory use is O(1)
// per entry regardless of file size.
type Scanner struct {
	s    *bufio.Scanner
	next int
}

// NewScanner returns a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	// Some playlists carry very wide lines.
	s.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	return &Scanner{s: s}
}

// Next returns the next qualifying record. A metadata line followed by a
// non-URL line is skipped; if that line is itself a metadata line it becomes
// the new pending candidate.
func (sc *Scanner) Next() (Item, bool) {
	var pending string
	for sc.s.Scan() {
		line := strings.TrimSpace(sc.s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, extinfPrefix) {
			pending = line
			continue
		}
		if pending == "" {
			continue
		}
		if !strings.HasPrefix(line, "http") {
			pending = ""
			continue
		}
		item := Item{Raw: pending, URL: line, Index: sc.next}
		sc.next++
		return item, true
	}
	return Item{}, false
}

// Err reports the first error encountered while reading.
func (sc *Scanner) Err() error {
	return sc.s.Err()
}

// CountEntries returns the number of qualifying records in r. The count is
// what a Scanner over the same content would yield, so chunked processing
// and pre-scanned totals always agree.
func CountEntries(r io.Reader) (int, error) {
	sc := NewScanner(r)
	n := 0
	for {
		if _, ok := sc.Next(); !ok {
			break
		}
		n++
	}
	return n, sc.Err()
}
