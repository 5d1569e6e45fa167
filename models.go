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

// Rule is one detection pattern: a canonical text fragment asserting a
// license expression when found in query text.
type Rule struct {
	// Identifier is the stable textual id, usually the rule file name
	// (e.g. "mit_12.RULE") or "<key>.LICENSE" for rules synthesized from
	// license texts.
	Identifier string

	// LicenseExpression names the license(s) this rule asserts, in
	// ScanCode key form ("mit", "gpl-2.0 WITH classpath-exception-2.0").
	LicenseExpression string

	// Text is the verbatim rule text, {{...}} markers included.
	Text string

	// Exactly one of these classification flags is typically set.
	IsLicenseText      bool
	IsLicenseNotice    bool
	IsLicenseReference bool
	IsLicenseTag       bool
	IsLicenseIntro     bool
	IsLicenseClue      bool

	// IsFalsePositive marks rules whose matches only subtract spurious
	// hits; they never yield a positive detection.
	IsFalsePositive bool

	// IsRequiredPhrase is read from the is_required_phrase frontmatter
	// flag; it does not depend on whether Text carries {{...}} spans.
	IsRequiredPhrase bool

	// IsContinuous requires the rule tokens to appear contiguously.
	IsContinuous bool

	// IsFromLicense is set on rules synthesized from a license full text.
	IsFromLicense bool

	// Relevance weighs this rule in scoring, 0..100. Defaults to 100.
	Relevance int

	// MinimumCoverage is the required coverage percent; 0 means unset.
	MinimumCoverage int

	ReferencedFilenames []string
	IgnorableURLs       []string
	IgnorableEmails     []string
	IgnorableCopyrights []string
	IgnorableHolders    []string
	IgnorableAuthors    []string
	Language            string
	Notes               string

	// Derived at index build time.
	tokens                     []uint16
	requiredPhrases            []posSpan
	lengthUnique               int
	highLength                 int
	highLengthUnique           int
	minMatchedLength           int
	minHighMatchedLength       int
	minMatchedLengthUnique     int
	minHighMatchedLengthUnique int
	isSmall                    bool
	isTiny                     bool
}

// Length is the rule length in tokens. Zero before indexing.
func (r *Rule) Length() int { return len(r.tokens) }

// License is the metadata record for one license key.
type License struct {
	Key                  string
	Name                 string
	ShortName            string
	Category             string
	SPDXLicenseKey       string
	OtherSPDXLicenseKeys []string
	Text                 string
	IsDeprecated         bool
	IsUnknown            bool
	IsGeneric            bool
	ReplacedBy           []string
	MinimumCoverage      int
	ReferenceURLs        []string
	Notes                string
	IgnorableURLs        []string
	IgnorableEmails      []string
	IgnorableCopyrights  []string
	IgnorableHolders     []string
	IgnorableAuthors     []string
}

// Matcher names, in pipeline order.
const (
	matcherHash    = "1-hash"
	matcherSPDXID  = "1-spdx-id"
	matcherAho     = "2-aho"
	matcherSeq     = "3-seq"
	matcherUnknown = "5-undetected"
)

// Match is a single raw or refined match of one rule against the query.
type Match struct {
	LicenseExpression     string  `json:"license_expression"`
	LicenseExpressionSPDX string  `json:"license_expression_spdx"`
	Matcher               string  `json:"matcher"`
	Score                 float64 `json:"score"`
	MatchedLength         int     `json:"matched_length"`
	RuleLength            int     `json:"rule_length"`
	MatchCoverage         float64 `json:"match_coverage"`
	RuleRelevance         int     `json:"rule_relevance"`
	RuleIdentifier        string  `json:"rule_identifier"`
	StartLine             int     `json:"start_line"`
	EndLine               int     `json:"end_line"`

	// StartToken and EndToken delimit the matched known-token positions,
	// end exclusive. Both are zero for matches that do not consume query
	// tokens (SPDX-LID).
	StartToken int `json:"start_token"`
	EndToken   int `json:"end_token"`

	MatchedText        string `json:"matched_text"`
	IsLicenseIntro     bool   `json:"is_license_intro"`
	IsLicenseClue      bool   `json:"is_license_clue"`
	IsLicenseReference bool   `json:"is_license_reference"`
	IsLicenseTag       bool   `json:"is_license_tag"`

	// HiLen is the number of matched positions holding high-value tokens.
	HiLen int `json:"hilen"`

	// rid is the internal rule id; -1 for synthetic matches (unknown).
	rid int
}

// lineContains reports whether other sits entirely inside m's line range with
// no more matched tokens; used by the refiner's containment sweep.
func (m *Match) lineContains(other *Match) bool {
	return m.StartLine <= other.StartLine &&
		m.EndLine >= other.EndLine &&
		m.MatchedLength >= other.MatchedLength
}
