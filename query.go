// Copyright 2023 The licensedetect Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package licensedetect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openscan/licensedetect/internal/sets"
)

const (
	// defaultRunBreak: a new query run starts after this many consecutive
	// lines without any known token.
	defaultRunBreak = 4

	// longLineTokens: a line with more tokens than this marks the query as
	// having long lines (minified or generated text).
	longLineTokens = 25

	// binaryNonPrintable: fraction of non-printable runes above which the
	// query is treated as binary.
	binaryNonPrintable = 0.30

	// beforeFirstPos keys the unknown/stopword counters for tokens seen
	// before the first known token.
	beforeFirstPos = -1
)

// spdxLine is one SPDX-License-Identifier occurrence found by the whole-text
// scan before tokenization.
type spdxLine struct {
	line int
	text string
}

// query is the tokenized representation of one input document plus the
// bookkeeping of which token positions are still available for matching.
// Matchers consume positions via subtract as matches are accepted.
type query struct {
	idx   *licenseIndex
	lines []string

	// tokens holds the known token ids in document order; unknown words
	// are dropped but counted in unknownsByPos.
	tokens    []uint16
	lineByPos []int

	// unknownsByPos and stopwordsByPos count the unknown/stopword tokens
	// that followed each known position (beforeFirstPos keys the tokens
	// before the first known one).
	unknownsByPos   map[int]int
	stopwordsByPos  map[int]int
	shortsAndDigits *sets.IntSet

	// high and low partition the still-matchable positions by token value.
	high *sets.IntSet
	low  *sets.IntSet

	isBinary     bool
	hasLongLines bool

	spdxLines []spdxLine
	runs      []*queryRun
}

// queryRun is a contiguous [start, end] slice of the query token positions,
// bounded by long junk stretches.
type queryRun struct {
	q          *query
	start, end int
}

// newQuery tokenizes text line by line and builds all query structures.
// runBreak <= 0 selects the default.
func newQuery(text string, idx *licenseIndex, runBreak int) *query {
	if runBreak <= 0 {
		runBreak = defaultRunBreak
	}

	q := &query{
		idx:             idx,
		lines:           splitLines(text),
		unknownsByPos:   make(map[int]int),
		stopwordsByPos:  make(map[int]int),
		shortsAndDigits: sets.NewIntSet(),
		high:            sets.NewIntSet(),
		low:             sets.NewIntSet(),
	}

	q.isBinary = detectBinary(text)
	q.scanSPDXLines()

	lastKnown := beforeFirstPos
	for lineNo, line := range q.lines {
		toks := tokenizeKeepStopwords(strings.TrimSpace(line))
		if len(toks) > longLineTokens {
			q.hasLongLines = true
		}
		for _, tok := range toks {
			if stopwords[tok] {
				q.stopwordsByPos[lastKnown]++
				continue
			}
			tid, known := idx.dict.lookup(tok)
			if !known {
				q.unknownsByPos[lastKnown]++
				continue
			}
			pos := len(q.tokens)
			lastKnown = pos
			q.tokens = append(q.tokens, tid)
			q.lineByPos = append(q.lineByPos, lineNo+1)
			if len(tok) == 1 || isDigits(tok) {
				q.shortsAndDigits.Insert(pos)
			}
			if idx.dict.isLegalese(tid) {
				q.high.Insert(pos)
			} else {
				q.low.Insert(pos)
			}
		}
	}

	q.buildRuns(runBreak)
	return q
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// detectBinary flags content with NUL bytes or too many non-printable runes.
func detectBinary(text string) bool {
	if text == "" {
		return false
	}
	if strings.IndexByte(text, 0) >= 0 {
		return true
	}
	nonPrintable, total := 0, 0
	for _, r := range text {
		total++
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			nonPrintable++
		}
	}
	return total > 0 && float64(nonPrintable)/float64(total) > binaryNonPrintable
}

// scanSPDXLines collects SPDX-License-Identifier expressions from the raw
// lines. This runs on the original text, before tokenization, so the
// expressions keep their case and punctuation for parsing.
func (q *query) scanSPDXLines() {
	for lineNo, line := range q.lines {
		prefix, expr := splitSPDXLid(strings.TrimSpace(line))
		if prefix == "" {
			continue
		}
		cleaned := cleanSPDXText(expr)
		if cleaned == "" {
			continue
		}
		q.spdxLines = append(q.spdxLines, spdxLine{line: lineNo + 1, text: cleaned})
	}
}

// buildRuns slices the token stream into runs, breaking wherever at least
// runBreak consecutive lines carry no known token.
func (q *query) buildRuns(runBreak int) {
	if len(q.tokens) == 0 {
		return
	}
	start := 0
	for pos := 1; pos < len(q.tokens); pos++ {
		gap := q.lineByPos[pos] - q.lineByPos[pos-1] - 1
		if gap >= runBreak {
			q.runs = append(q.runs, &queryRun{q: q, start: start, end: pos - 1})
			start = pos
		}
	}
	q.runs = append(q.runs, &queryRun{q: q, start: start, end: len(q.tokens) - 1})
}

// wholeRun covers the entire query.
func (q *query) wholeRun() *queryRun {
	return &queryRun{q: q, start: 0, end: len(q.tokens) - 1}
}

// subtract removes an accepted match's positions from the matchable sets.
func (q *query) subtract(sp posSpan) {
	for pos := sp.start; pos <= sp.end; pos++ {
		q.high.Delete(pos)
		q.low.Delete(pos)
	}
}

func (q *query) lineForPos(pos int) int {
	if pos < 0 || pos >= len(q.lineByPos) {
		return 1
	}
	return q.lineByPos[pos]
}

// textForLines reconstructs the original text for an inclusive 1-based line
// range.
func (q *query) textForLines(startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(q.lines) {
		endLine = len(q.lines)
	}
	if startLine > endLine {
		return ""
	}
	return strings.Join(q.lines[startLine-1:endLine], "\n")
}

func (r *queryRun) len() int {
	if r.end < r.start {
		return 0
	}
	return r.end - r.start + 1
}

// tokens returns the token id slice for this run.
func (r *queryRun) tokens() []uint16 {
	if r.len() == 0 {
		return nil
	}
	return r.q.tokens[r.start : r.end+1]
}

// matchables returns the still-matchable positions inside the run, restricted
// to high-value positions unless includeLow is set.
func (r *queryRun) matchables(includeLow bool) *sets.IntSet {
	out := sets.NewIntSet()
	for pos := r.start; pos <= r.end; pos++ {
		if r.q.high.Contains(pos) || (includeLow && r.q.low.Contains(pos)) {
			out.Insert(pos)
		}
	}
	return out
}

// isDigitsOnly reports whether every token in the run is a digit-only token.
func (r *queryRun) isDigitsOnly() bool {
	for _, tid := range r.tokens() {
		if !r.q.idx.digitOnlyTids[tid] {
			return false
		}
	}
	return true
}

// isMatchable reports whether any matchable token remains in the run.
func (r *queryRun) isMatchable(includeLow bool) bool {
	if r.len() == 0 || r.isDigitsOnly() {
		return false
	}
	return !r.matchables(includeLow).Empty()
}

// matchableTokens returns the run tokens with non-matchable positions masked
// to -1, or nil when no high-value matchable position remains. The mask keeps
// consumed positions from seeding new candidates.
func (r *queryRun) matchableTokens() []int32 {
	if r.matchables(false).Empty() {
		return nil
	}
	matchable := r.matchables(true)
	out := make([]int32, 0, r.len())
	for pos := r.start; pos <= r.end; pos++ {
		if matchable.Contains(pos) {
			out = append(out, int32(r.q.tokens[pos]))
		} else {
			out = append(out, -1)
		}
	}
	return out
}

func (r *queryRun) lineForPos(pos int) int {
	return r.q.lineForPos(pos)
}
