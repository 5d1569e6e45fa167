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
	"crypto/sha1"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"github.com/sirupsen/logrus"

	"github.com/openscan/licensedetect/internal/sets"
)

// unknownNgramLength is the window size for the unknown-text automaton.
const unknownNgramLength = 6

// licenseIndex holds every index structure the matchers need. It is built
// once from the rule and license corpus and never mutated afterwards, so one
// instance can back any number of concurrent detection calls.
type licenseIndex struct {
	dict        *dictionary
	lenLegalese int

	// digitOnlyTids are ids whose token is entirely digits. Runs made only
	// of these are never matchable.
	digitOnlyTids map[uint16]bool

	rulesByRid []*Rule
	tidsByRid  [][]uint16

	// ridByHash maps the SHA-1 of a rule's token id sequence to its rid.
	// False-positive rules are excluded.
	ridByHash map[[sha1.Size]byte]int

	// ridBySPDXKey maps a lowercased SPDX (or ScanCode) license key to the
	// best rule asserting exactly that key.
	ridBySPDXKey map[string]int

	setsByRid         []*sets.IntSet
	msetsByRid        []map[uint16]int
	highPostingsByRid []map[uint16][]int

	// rulesAutomaton matches whole rule token sequences; patternRids maps
	// its pattern ids back to rids. unknownAutomaton matches selected
	// license-like 6-grams. Either may be nil when no patterns exist.
	rulesAutomaton   *ahocorasick.Trie
	patternRids      []int
	unknownAutomaton *ahocorasick.Trie

	regularRids         map[int]bool
	falsePositiveRids   map[int]bool
	approxMatchableRids map[int]bool

	licensesByKey map[string]*License
}

// isApproxMatchable decides whether a rule participates in sequence matching.
func isApproxMatchable(r *Rule) bool {
	if r.IsFalsePositive || r.IsRequiredPhrase || r.isTiny || r.IsContinuous {
		return false
	}
	if r.isSmall && (r.IsLicenseReference || r.IsLicenseTag) {
		return false
	}
	return true
}

// tokensToBytes encodes a token id sequence as little-endian byte pairs, the
// form both automata are built over.
func tokensToBytes(tokens []uint16) []byte {
	b := make([]byte, 0, 2*len(tokens))
	for _, tid := range tokens {
		b = append(b, byte(tid), byte(tid>>8))
	}
	return b
}

// hashTokens is the SHA-1 digest of a token sequence in its little-endian
// signed 16-bit encoding.
func hashTokens(tokens []uint16) [sha1.Size]byte {
	return sha1.Sum(tokensToBytes(tokens))
}

// goodUnknownNgram filters 6-grams for the unknown automaton: drop windows
// that are mostly digits, contain a year, are mostly single characters, have
// too few distinct ids, carry no high-value id, or are built entirely out of
// marker words.
func goodUnknownNgram(words []string, tids []uint16, lenLegalese int) bool {
	const minGood = 3

	digits, singles, years := 0, 0, 0
	allMarkers := true
	for _, w := range words {
		if isDigits(w) {
			digits++
		}
		if isYear(w) {
			years++
		}
		if len(w) == 1 {
			singles++
		}
		if !markerWords[w] {
			allMarkers = false
		}
	}
	if digits >= minGood || years > 0 || singles >= minGood || allMarkers {
		return false
	}

	distinct := sets.NewIntSet()
	hasHigh := false
	for _, tid := range tids {
		distinct.Insert(int(tid))
		if int(tid) < lenLegalese {
			hasHigh = true
		}
	}
	return distinct.Len() > 2 && hasHigh
}

// ruleFromLicense synthesizes the full-text rule for a license.
func ruleFromLicense(lic *License) *Rule {
	if strings.TrimSpace(lic.Text) == "" {
		return nil
	}
	lines := strings.Split(lic.Text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return &Rule{
		Identifier:          lic.Key + ".LICENSE",
		LicenseExpression:   lic.Key,
		Text:                strings.Join(lines, "\n"),
		IsLicenseText:       true,
		IsFromLicense:       true,
		Relevance:           100,
		MinimumCoverage:     lic.MinimumCoverage,
		IgnorableURLs:       lic.IgnorableURLs,
		IgnorableEmails:     lic.IgnorableEmails,
		IgnorableCopyrights: lic.IgnorableCopyrights,
		IgnorableHolders:    lic.IgnorableHolders,
		IgnorableAuthors:    lic.IgnorableAuthors,
		Notes:               lic.Notes,
	}
}

// buildIndex constructs the full index from rules and licenses. Licenses with
// text contribute one synthetic full-text rule each, indexed ahead of the
// plain rules. Rules that tokenize to nothing are skipped with a warning.
func buildIndex(rules []*Rule, licenses []*License, log logrus.FieldLogger) *licenseIndex {
	if log == nil {
		log = logrus.StandardLogger()
	}

	dict := newDictionary()
	idx := &licenseIndex{
		dict:                dict,
		lenLegalese:         dict.lenLegalese,
		digitOnlyTids:       make(map[uint16]bool),
		ridByHash:           make(map[[sha1.Size]byte]int),
		ridBySPDXKey:        make(map[string]int),
		regularRids:         make(map[int]bool),
		falsePositiveRids:   make(map[int]bool),
		approxMatchableRids: make(map[int]bool),
		licensesByKey:       make(map[string]*License, len(licenses)),
	}

	for _, lic := range licenses {
		idx.licensesByKey[lic.Key] = lic
	}

	all := make([]*Rule, 0, len(rules)+len(licenses))
	for _, lic := range licenses {
		if r := ruleFromLicense(lic); r != nil {
			all = append(all, r)
		}
	}
	all = append(all, rules...)

	var rulePatterns [][]byte
	unknownPatterns := make(map[string][]byte)

	for _, rule := range all {
		words := tokenize(rule.Text)
		if len(words) == 0 {
			log.WithField("rule", rule.Identifier).Warn("skipping rule with no tokens")
			continue
		}

		if rule.IsRequiredPhrase {
			spans, ok := requiredPhraseSpans(rule.Text)
			if !ok {
				log.WithField("rule", rule.Identifier).Warn("skipping rule with mismatched {{...}} phrase markers")
				continue
			}
			rule.requiredPhrases = spans
		}

		tids := make([]uint16, 0, len(words))
		isWeak := true
		overflow := false
		for _, w := range words {
			tid, ok := dict.getOrAssign(w)
			if !ok {
				overflow = true
				break
			}
			if dict.isLegalese(tid) {
				isWeak = false
			}
			tids = append(tids, tid)
		}
		if overflow {
			log.WithField("rule", rule.Identifier).Warn("skipping rule: token dictionary is full")
			continue
		}

		rid := len(idx.rulesByRid)
		rule.tokens = tids
		idx.rulesByRid = append(idx.rulesByRid, rule)
		idx.tidsByRid = append(idx.tidsByRid, tids)
		idx.setsByRid = append(idx.setsByRid, nil)
		idx.msetsByRid = append(idx.msetsByRid, nil)
		idx.highPostingsByRid = append(idx.highPostingsByRid, nil)

		rulePatterns = append(rulePatterns, tokensToBytes(tids))
		idx.patternRids = append(idx.patternRids, rid)

		if rule.IsFalsePositive {
			idx.falsePositiveRids[rid] = true
			continue
		}

		// First write wins on hash collisions: distinct token sequences
		// colliding under SHA-1 is not a practical concern.
		h := hashTokens(tids)
		if _, seen := idx.ridByHash[h]; !seen {
			idx.ridByHash[h] = rid
		}
		idx.regularRids[rid] = true

		length := len(tids)
		rule.isSmall = length < smallRule
		rule.isTiny = length < tinyRule

		if length >= unknownNgramLength {
			for i := 0; i+unknownNgramLength <= length; i++ {
				wgram := words[i : i+unknownNgramLength]
				tgram := tids[i : i+unknownNgramLength]
				if goodUnknownNgram(wgram, tgram, idx.lenLegalese) {
					enc := tokensToBytes(tgram)
					unknownPatterns[string(enc)] = enc
				}
			}
		}

		set, mset := buildSetAndMset(tids)
		idx.setsByRid[rid] = set
		idx.msetsByRid[rid] = mset

		highMset := highMsetSubset(mset, idx.lenLegalese)
		rule.lengthUnique = set.Len()
		rule.highLengthUnique = set.CountBelow(idx.lenLegalese)
		rule.highLength = msetLen(highMset)

		cov, minLen, minHigh := computeThresholdsOccurrences(rule.MinimumCoverage, length, rule.highLength)
		rule.MinimumCoverage = cov
		rule.minMatchedLength = minLen
		rule.minHighMatchedLength = minHigh

		minLenU, minHighU := computeThresholdsUnique(rule.MinimumCoverage, length, rule.lengthUnique, rule.highLengthUnique)
		rule.minMatchedLengthUnique = minLenU
		rule.minHighMatchedLengthUnique = minHighU

		if isApproxMatchable(rule) && !isWeak {
			idx.approxMatchableRids[rid] = true
			postings := make(map[uint16][]int)
			for pos, tid := range tids {
				if dict.isLegalese(tid) {
					postings[tid] = append(postings[tid], pos)
				}
			}
			if len(postings) > 0 {
				idx.highPostingsByRid[rid] = postings
			}
		}
	}

	for token, tid := range dict.ids {
		if isDigits(token) {
			idx.digitOnlyTids[tid] = true
		}
	}

	idx.buildSPDXKeyTable()

	if len(rulePatterns) > 0 {
		idx.rulesAutomaton = ahocorasick.NewTrieBuilder().AddPatterns(rulePatterns).Build()
	}
	if len(unknownPatterns) > 0 {
		builder := ahocorasick.NewTrieBuilder()
		for _, p := range unknownPatterns {
			builder.AddPattern(p)
		}
		idx.unknownAutomaton = builder.Build()
	}

	return idx
}

// buildSPDXKeyTable maps lowercased SPDX and ScanCode keys to the best rule
// asserting that key, preferring higher relevance then shorter rules so bare
// tag rules win over full texts.
func (idx *licenseIndex) buildSPDXKeyTable() {
	better := func(rid, cur int) bool {
		if cur < 0 {
			return true
		}
		a, b := idx.rulesByRid[rid], idx.rulesByRid[cur]
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		return len(a.tokens) < len(b.tokens)
	}

	byExpr := make(map[string]int)
	for rid := range idx.rulesByRid {
		if !idx.regularRids[rid] {
			continue
		}
		key := normalizeSPDXKey(idx.rulesByRid[rid].LicenseExpression)
		if cur, ok := byExpr[key]; !ok || better(rid, cur) {
			byExpr[key] = rid
		}
	}

	for key, rid := range byExpr {
		idx.ridBySPDXKey[key] = rid
	}
	for _, lic := range idx.licensesByKey {
		rid, ok := byExpr[normalizeSPDXKey(lic.Key)]
		if !ok {
			continue
		}
		if lic.SPDXLicenseKey != "" {
			idx.ridBySPDXKey[normalizeSPDXKey(lic.SPDXLicenseKey)] = rid
		}
		for _, other := range lic.OtherSPDXLicenseKeys {
			idx.ridBySPDXKey[normalizeSPDXKey(other)] = rid
		}
	}
}

// bestRuleForSPDXKey resolves one SPDX expression token to a rule, trying the
// key table first and falling back to a scan for the highest-relevance rule
// whose expression normalizes to the same key.
func (idx *licenseIndex) bestRuleForSPDXKey(key string) (int, bool) {
	norm := normalizeSPDXKey(key)
	if rid, ok := idx.ridBySPDXKey[norm]; ok {
		return rid, true
	}
	best := -1
	for rid, rule := range idx.rulesByRid {
		if idx.falsePositiveRids[rid] {
			continue
		}
		if normalizeSPDXKey(rule.LicenseExpression) != norm {
			continue
		}
		if best < 0 || rule.Relevance > idx.rulesByRid[best].Relevance {
			best = rid
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// spdxKeyFor maps a ScanCode license key to its SPDX form, with the
// LicenseRef fallback for keys without an SPDX equivalent.
func (idx *licenseIndex) spdxKeyFor(key string) string {
	if lic, ok := idx.licensesByKey[key]; ok && lic.SPDXLicenseKey != "" {
		return lic.SPDXLicenseKey
	}
	return "LicenseRef-scancode-" + key
}

func normalizeSPDXKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}
