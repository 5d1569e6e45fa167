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

// Package licensedetect detects open-source licenses in text. A fixed corpus
// of rules (short canonical fragments) and licenses (full texts) is compiled
// once into an immutable index; Detect then runs a cascade of matchers over
// each input - exact hash, SPDX-License-Identifier tags, Aho-Corasick exact
// occurrences, approximate sequence alignment and unknown-text flagging -
// and refines the raw matches into ranked license detections with
// provenance.
package licensedetect

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures engine construction. The zero value of every field
// selects its default.
type Options struct {
	// RulesDir and LicensesDir locate the corpus on disk. Both are
	// required by NewEngine; NewEngineFromCorpus takes parsed records
	// instead.
	RulesDir    string
	LicensesDir string

	// CandidatePoolSize caps the rules aligned per run by the sequence
	// matcher. Default 50.
	CandidatePoolSize int

	// RunBreakLines is the number of consecutive known-token-free lines
	// that splits the query into separate runs. Default 4.
	RunBreakLines int

	// DetectionLines is the line gap beyond which refined matches form
	// separate detections. Default 4.
	DetectionLines int

	// Logger receives corpus warnings and matcher debug output. Defaults
	// to the logrus standard logger.
	Logger logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// Engine is the shared, immutable detection handle. One Engine may serve any
// number of concurrent Detect calls; each call owns its own query state.
type Engine struct {
	idx  *licenseIndex
	opts Options
}

// NewEngine loads the corpus from disk and builds the index. Construction
// fails when either corpus directory is missing; individual malformed rule
// or license files are logged, skipped, and do not fail construction.
func NewEngine(opts Options) (*Engine, error) {
	log := opts.logger()

	// A nil slice means the corpus directory itself could not be read;
	// per-file parse failures come back as a non-nil (possibly empty)
	// slice plus an aggregated error and never fail construction.
	rules, err := LoadRules(opts.RulesDir, log)
	if rules == nil {
		return nil, errors.Wrap(err, "loading rules corpus")
	}
	licenses, err := LoadLicenses(opts.LicensesDir, log)
	if licenses == nil {
		return nil, errors.Wrap(err, "loading licenses corpus")
	}

	return NewEngineFromCorpus(rules, licenses, opts), nil
}

// NewEngineFromCorpus builds an engine from already-parsed rules and
// licenses. Rules are indexed after the synthetic full-text rules derived
// from the licenses.
func NewEngineFromCorpus(rules []*Rule, licenses []*License, opts Options) *Engine {
	initTrace()
	return &Engine{
		idx:  buildIndex(rules, licenses, opts.logger()),
		opts: opts,
	}
}

// RuleCount returns the number of indexed rules, synthetic license rules
// included.
func (e *Engine) RuleCount() int { return len(e.idx.rulesByRid) }

// Detect runs the full matching pipeline over one file's content and returns
// its license detections in line order. Inputs without license evidence
// yield an empty list; Detect does not fail.
func (e *Engine) Detect(content string) []Detection {
	log := e.opts.logger()
	q := newQuery(content, e.idx, e.opts.RunBreakLines)
	if len(q.tokens) == 0 && len(q.spdxLines) == 0 {
		return nil
	}

	var hashMatches, ahoMatches, seqMatches []*Match
	accept := func(dst *[]*Match, ms []*Match) {
		for _, m := range ms {
			if m.EndToken > m.StartToken {
				q.subtract(posSpan{start: m.StartToken, end: m.EndToken - 1})
			}
		}
		*dst = append(*dst, ms...)
	}

	// Exact whole-file match: the file is one known rule text, so the
	// near-duplicate check and the per-run matchers are skipped. SPDX
	// identifiers and unknown-text detection still run.
	whole := q.wholeRun()
	wholeHash := hashMatch(e.idx, whole)
	accept(&hashMatches, wholeHash)

	spdxMatches := spdxMatch(e.idx, q)

	if len(wholeHash) == 0 {
		// Near-duplicate check: when the whole file highly resembles a
		// few rules, align those against the full token stream instead
		// of chasing per-run partials.
		if traceScoring() {
			tracef("near-duplicate check over %d tokens\n", len(q.tokens))
		}
		nearDupes := computeCandidates(e.idx, whole, true, nearDupeCandidates)
		if len(nearDupes) > 0 {
			accept(&seqMatches, seqMatch(e.idx, whole, nearDupes))
		}

		for _, run := range q.runs {
			if !run.isMatchable(true) {
				continue
			}
			accept(&hashMatches, hashMatch(e.idx, run))
			accept(&ahoMatches, ahoMatch(e.idx, run, log))
			if len(nearDupes) > 0 || !run.isMatchable(false) {
				continue
			}
			cands := computeCandidates(e.idx, run, false, e.opts.CandidatePoolSize)
			if traceScoring() {
				traceCandidates(run, cands)
			}
			accept(&seqMatches, seqMatch(e.idx, run, cands))
		}
	}

	// Pool in matcher order so downstream ordering is deterministic.
	matches := make([]*Match, 0, len(hashMatches)+len(spdxMatches)+len(ahoMatches)+len(seqMatches))
	matches = append(matches, hashMatches...)
	matches = append(matches, spdxMatches...)
	matches = append(matches, ahoMatches...)
	matches = append(matches, seqMatches...)

	if !q.isBinary && !q.hasLongLines {
		matches = append(matches, unknownMatch(e.idx, q, matches)...)
	}

	refined := refineMatches(e.idx, matches)
	return assembleDetections(e.idx, refined, e.opts.DetectionLines)
}
