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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	ruleFileSuffix    = ".RULE"
	licenseFileSuffix = ".LICENSE"
)

// yesNoBool unmarshals the permissive boolean forms used in rule
// frontmatter: true/false, yes/no, 1/0.
type yesNoBool bool

func (b *yesNoBool) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "true", "yes", "1", "y":
		*b = true
	case "false", "no", "0", "n", "":
		*b = false
	default:
		return fmt.Errorf("invalid boolean value %q", node.Value)
	}
	return nil
}

type ruleFrontmatter struct {
	LicenseExpression   string    `yaml:"license_expression"`
	IsLicenseText       yesNoBool `yaml:"is_license_text"`
	IsLicenseNotice     yesNoBool `yaml:"is_license_notice"`
	IsLicenseReference  yesNoBool `yaml:"is_license_reference"`
	IsLicenseTag        yesNoBool `yaml:"is_license_tag"`
	IsLicenseIntro      yesNoBool `yaml:"is_license_intro"`
	IsLicenseClue       yesNoBool `yaml:"is_license_clue"`
	IsFalsePositive     yesNoBool `yaml:"is_false_positive"`
	IsRequiredPhrase    yesNoBool `yaml:"is_required_phrase"`
	IsContinuous        yesNoBool `yaml:"is_continuous"`
	Relevance           *int      `yaml:"relevance"`
	MinimumCoverage     *int      `yaml:"minimum_coverage"`
	ReferencedFilenames []string  `yaml:"referenced_filenames"`
	IgnorableURLs       []string  `yaml:"ignorable_urls"`
	IgnorableEmails     []string  `yaml:"ignorable_emails"`
	IgnorableCopyrights []string  `yaml:"ignorable_copyrights"`
	IgnorableHolders    []string  `yaml:"ignorable_holders"`
	IgnorableAuthors    []string  `yaml:"ignorable_authors"`
	Language            string    `yaml:"language"`
	Notes               string    `yaml:"notes"`
}

type licenseFrontmatter struct {
	Key                  string    `yaml:"key"`
	Name                 string    `yaml:"name"`
	ShortName            string    `yaml:"short_name"`
	Category             string    `yaml:"category"`
	SPDXLicenseKey       string    `yaml:"spdx_license_key"`
	OtherSPDXLicenseKeys []string  `yaml:"other_spdx_license_keys"`
	IsDeprecated         yesNoBool `yaml:"is_deprecated"`
	IsUnknown            yesNoBool `yaml:"is_unknown"`
	IsGeneric            yesNoBool `yaml:"is_generic"`
	ReplacedBy           []string  `yaml:"replaced_by"`
	MinimumCoverage      *int      `yaml:"minimum_coverage"`
	TextURLs             []string  `yaml:"text_urls"`
	OtherURLs            []string  `yaml:"other_urls"`
	HomepageURL          string    `yaml:"homepage_url"`
	OSIURL               string    `yaml:"osi_url"`
	FAQURL               string    `yaml:"faq_url"`
	Notes                string    `yaml:"notes"`
	IgnorableURLs        []string  `yaml:"ignorable_urls"`
	IgnorableEmails      []string  `yaml:"ignorable_emails"`
	IgnorableCopyrights  []string  `yaml:"ignorable_copyrights"`
	IgnorableHolders     []string  `yaml:"ignorable_holders"`
	IgnorableAuthors     []string  `yaml:"ignorable_authors"`
}

// splitFrontmatter separates the YAML frontmatter between two "---"
// delimiters from the text after it.
func splitFrontmatter(content string) (frontmatter, text string, err error) {
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return "", "", errors.New("missing '---' frontmatter delimiters")
	}
	return parts[1], strings.TrimSpace(strings.TrimPrefix(parts[2], "\n")), nil
}

// ParseRuleFile parses one .RULE file: YAML frontmatter then the verbatim
// rule text.
func ParseRuleFile(path string) (*Rule, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading rule file")
	}

	fmText, text, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "rule %s", path)
	}
	if text == "" {
		return nil, errors.Errorf("rule %s: empty rule text", path)
	}

	var fm ruleFrontmatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return nil, errors.Wrapf(err, "rule %s: invalid frontmatter", path)
	}

	if fm.LicenseExpression == "" && !bool(fm.IsFalsePositive) {
		return nil, errors.Errorf("rule %s: missing license_expression", path)
	}

	relevance := 100
	if fm.Relevance != nil {
		relevance = *fm.Relevance
	}
	if relevance < 0 || relevance > 100 {
		return nil, errors.Errorf("rule %s: relevance %d out of range", path, relevance)
	}
	coverage := 0
	if fm.MinimumCoverage != nil {
		coverage = *fm.MinimumCoverage
	}
	if coverage < 0 || coverage > 100 {
		return nil, errors.Errorf("rule %s: minimum_coverage %d out of range", path, coverage)
	}

	rule := &Rule{
		Identifier:          filepath.Base(path),
		LicenseExpression:   fm.LicenseExpression,
		Text:                text,
		IsLicenseText:       bool(fm.IsLicenseText),
		IsLicenseNotice:     bool(fm.IsLicenseNotice),
		IsLicenseReference:  bool(fm.IsLicenseReference),
		IsLicenseTag:        bool(fm.IsLicenseTag),
		IsLicenseIntro:      bool(fm.IsLicenseIntro),
		IsLicenseClue:       bool(fm.IsLicenseClue),
		IsFalsePositive:     bool(fm.IsFalsePositive),
		IsRequiredPhrase:    bool(fm.IsRequiredPhrase),
		IsContinuous:        bool(fm.IsContinuous),
		Relevance:           relevance,
		MinimumCoverage:     coverage,
		ReferencedFilenames: fm.ReferencedFilenames,
		IgnorableURLs:       fm.IgnorableURLs,
		IgnorableEmails:     fm.IgnorableEmails,
		IgnorableCopyrights: fm.IgnorableCopyrights,
		IgnorableHolders:    fm.IgnorableHolders,
		IgnorableAuthors:    fm.IgnorableAuthors,
		Language:            fm.Language,
		Notes:               fm.Notes,
	}
	if rule.IsFalsePositive && rule.LicenseExpression == "" {
		rule.LicenseExpression = "unknown"
	}
	if rule.IsRequiredPhrase {
		if _, ok := requiredPhraseSpans(rule.Text); !ok {
			return nil, errors.Errorf("rule %s: mismatched {{...}} phrase markers", path)
		}
	}
	return rule, nil
}

// ParseLicenseFile parses one .LICENSE file. The frontmatter key, when
// present, must equal the file stem; empty text is allowed only for deprecated, unknown or
// generic licenses.
func ParseLicenseFile(path string) (*License, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading license file")
	}

	fmText, text, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "license %s", path)
	}

	var fm licenseFrontmatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return nil, errors.Wrapf(err, "license %s: invalid frontmatter", path)
	}

	stem := strings.TrimSuffix(filepath.Base(path), licenseFileSuffix)
	if fm.Key != "" && fm.Key != stem {
		return nil, errors.Errorf("license %s: key %q does not match file stem %q", path, fm.Key, stem)
	}

	deprecated := bool(fm.IsDeprecated)
	if text == "" && !deprecated && !bool(fm.IsUnknown) && !bool(fm.IsGeneric) {
		return nil, errors.Errorf("license %s: empty text", path)
	}

	coverage := 0
	if fm.MinimumCoverage != nil {
		coverage = *fm.MinimumCoverage
	}

	urls := append([]string{}, fm.TextURLs...)
	urls = append(urls, fm.OtherURLs...)
	for _, u := range []string{fm.HomepageURL, fm.OSIURL, fm.FAQURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}

	return &License{
		Key:                  stem,
		Name:                 fm.Name,
		ShortName:            fm.ShortName,
		Category:             fm.Category,
		SPDXLicenseKey:       fm.SPDXLicenseKey,
		OtherSPDXLicenseKeys: fm.OtherSPDXLicenseKeys,
		Text:                 text,
		IsDeprecated:         deprecated,
		IsUnknown:            bool(fm.IsUnknown),
		IsGeneric:            bool(fm.IsGeneric),
		ReplacedBy:           fm.ReplacedBy,
		MinimumCoverage:      coverage,
		ReferenceURLs:        urls,
		Notes:                fm.Notes,
		IgnorableURLs:        fm.IgnorableURLs,
		IgnorableEmails:      fm.IgnorableEmails,
		IgnorableCopyrights:  fm.IgnorableCopyrights,
		IgnorableHolders:     fm.IgnorableHolders,
		IgnorableAuthors:     fm.IgnorableAuthors,
	}, nil
}

// LoadRules parses every .RULE file in dir. Files that fail to parse are
// logged and skipped; the aggregated error reports them without voiding the
// returned rules. A partial corpus always beats no corpus.
func LoadRules(dir string, log logrus.FieldLogger) ([]*Rule, error) {
	return loadCorpusDir(dir, ruleFileSuffix, log, func(path string) (*Rule, error) {
		return ParseRuleFile(path)
	})
}

// LoadLicenses parses every .LICENSE file in dir with the same skip-on-error
// policy as LoadRules.
func LoadLicenses(dir string, log logrus.FieldLogger) ([]*License, error) {
	return loadCorpusDir(dir, licenseFileSuffix, log, func(path string) (*License, error) {
		return ParseLicenseFile(path)
	})
}

func loadCorpusDir[T any](dir, suffix string, log logrus.FieldLogger, parse func(string) (*T, error)) ([]*T, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading corpus directory %s", dir)
	}

	// The result is non-nil from here on: a readable directory yields a
	// usable (possibly empty) corpus even when every file in it fails to
	// parse. Only the ReadDir failure above returns a nil slice.
	out := make([]*T, 0, len(entries))
	var errs *multierror.Error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		parsed, err := parse(path)
		if err != nil {
			log.WithField("file", entry.Name()).WithError(err).Warn("skipping corpus file")
			errs = multierror.Append(errs, err)
			continue
		}
		out = append(out, parsed)
	}
	return out, errs.ErrorOrNil()
}
