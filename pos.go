package corevm

import "fmt"

// Range is a byte-offset span within some input, kept as small as
// possible (two ints) the way the teacher's Range does, since every
// literal Pair built by the reader carries one via its Source-Mapping.
type Range struct {
	Start, End int
}

func NewRange(start, end int) Range { return Range{Start: start, End: end} }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Str(v []byte) string { return string(v[r.Start:r.End]) }

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

func (r Range) Empty() bool { return r.Start == 0 && r.End == 0 }

// Location converts a byte cursor into 1-based line/column, matching the
// reader's own incremental line/column tracking so error messages always
// agree with the reader's live counters.
type Location struct {
	Line, Column, Cursor int
}

// lineIndex allows O(log n) cursor -> line/column conversion for a
// loaded source file, used by the reader for Source-Mapping and read
// error lines and by newError to locate a runtime error's range.
type lineIndex struct {
	input     []byte
	lineStart []int
}

func newLineIndex(input []byte) *lineIndex {
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i, b := range input {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{input: input, lineStart: starts}
}

func (li *lineIndex) locationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}
	lo, hi := 0, len(li.lineStart)
	for lo < hi {
		mid := (lo + hi) / 2
		if li.lineStart[mid] > cursor {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	lineIdx := lo - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	lineStart := li.lineStart[lineIdx]
	col := 1
	for _, r := range string(li.input[lineStart:cursor]) {
		_ = r
		col++
	}
	return Location{Line: lineIdx + 1, Column: col, Cursor: cursor}
}
