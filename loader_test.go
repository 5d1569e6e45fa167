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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRuleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mit_12.RULE", `---
license_expression: mit
is_license_notice: yes
relevance: 90
minimum_coverage: 80
referenced_filenames:
    - LICENSE
notes: a note
---
Licensed under the MIT license. See {{LICENSE}} file.`)

	rule, err := ParseRuleFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rule.Identifier != "mit_12.RULE" {
		t.Errorf("identifier = %q, want mit_12.RULE", rule.Identifier)
	}
	if rule.LicenseExpression != "mit" || !rule.IsLicenseNotice {
		t.Errorf("parsed rule = %+v", rule)
	}
	if rule.Relevance != 90 || rule.MinimumCoverage != 80 {
		t.Errorf("relevance/coverage = %d/%d, want 90/80", rule.Relevance, rule.MinimumCoverage)
	}
	if diff := cmp.Diff([]string{"LICENSE"}, rule.ReferencedFilenames); diff != "" {
		t.Errorf("referenced filenames diff:\n%s", diff)
	}
	if rule.Text == "" || rule.Text[0] != 'L' {
		t.Errorf("text = %q, want the verbatim rule text", rule.Text)
	}
}

func TestParseRuleFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.RULE", "---\nlicense_expression: mit\n---\nMIT license\n")

	rule, err := ParseRuleFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rule.Relevance != 100 {
		t.Errorf("default relevance = %d, want 100", rule.Relevance)
	}
	if rule.MinimumCoverage != 0 {
		t.Errorf("default minimum coverage = %d, want 0", rule.MinimumCoverage)
	}
}

func TestParseRuleFileBooleans(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true}, {"yes", true}, {"1", true},
		{"false", false}, {"no", false}, {"0", false},
	}
	for _, tt := range tests {
		path := writeFile(t, dir, "b_"+tt.value+".RULE",
			"---\nlicense_expression: mit\nis_continuous: "+tt.value+"\n---\nMIT license\n")
		rule, err := ParseRuleFile(path)
		if err != nil {
			t.Fatalf("%s: %v", tt.value, err)
		}
		if rule.IsContinuous != tt.want {
			t.Errorf("is_continuous %q parsed as %v, want %v", tt.value, rule.IsContinuous, tt.want)
		}
	}
}

func TestParseRuleFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter", "just text, no delimiters\n"},
		{"empty text", "---\nlicense_expression: mit\n---\n\n"},
		{"missing expression", "---\nis_license_notice: yes\n---\nsome text\n"},
		{"bad relevance", "---\nlicense_expression: mit\nrelevance: 150\n---\ntext\n"},
		{"bad boolean", "---\nlicense_expression: mit\nis_continuous: maybe\n---\ntext\n"},
		{"dangling phrase", "---\nlicense_expression: mit\nis_required_phrase: yes\n---\nbad {{ phrase\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad.RULE", tt.content)
			if _, err := ParseRuleFile(path); err == nil {
				t.Errorf("ParseRuleFile accepted %s", tt.name)
			}
		})
	}
}

func TestParseRuleFileFalsePositiveNeedsNoExpression(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fp.RULE", "---\nis_false_positive: yes\n---\nall rights reserved\n")
	rule, err := ParseRuleFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !rule.IsFalsePositive {
		t.Error("is_false_positive not parsed")
	}
	if rule.LicenseExpression != "unknown" {
		t.Errorf("expression = %q, want unknown default", rule.LicenseExpression)
	}
}

func TestParseLicenseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mit.LICENSE", `---
key: mit
name: MIT License
short_name: MIT
category: Permissive
spdx_license_key: MIT
other_spdx_license_keys:
    - MIT-License
text_urls:
    - https://opensource.org/licenses/MIT
---
Permission is hereby granted, free of charge.`)

	lic, err := ParseLicenseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lic.Key != "mit" || lic.SPDXLicenseKey != "MIT" {
		t.Errorf("parsed license = %+v", lic)
	}
	if diff := cmp.Diff([]string{"https://opensource.org/licenses/MIT"}, lic.ReferenceURLs); diff != "" {
		t.Errorf("urls diff:\n%s", diff)
	}
}

func TestParseLicenseFileKeyMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mit.LICENSE", "---\nkey: apache-2.0\n---\ntext\n")
	if _, err := ParseLicenseFile(path); err == nil {
		t.Error("key/stem mismatch accepted")
	}
}

func TestParseLicenseFileEmptyTextPolicy(t *testing.T) {
	dir := t.TempDir()

	plain := writeFile(t, dir, "plain.LICENSE", "---\nkey: plain\n---\n")
	if _, err := ParseLicenseFile(plain); err == nil {
		t.Error("empty text accepted for a regular license")
	}

	deprecated := writeFile(t, dir, "old.LICENSE", "---\nkey: old\nis_deprecated: yes\n---\n")
	if _, err := ParseLicenseFile(deprecated); err != nil {
		t.Errorf("empty text rejected for deprecated license: %v", err)
	}
}

func TestLoadRulesPartialCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.RULE", "---\nlicense_expression: mit\n---\nMIT license\n")
	writeFile(t, dir, "broken.RULE", "no frontmatter at all\n")
	writeFile(t, dir, "ignored.txt", "not a rule\n")

	rules, err := LoadRules(dir, quietLogger())
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if err == nil {
		t.Error("broken file did not surface in the aggregated error")
	}
}

func TestLoadRulesAllBrokenCorpus(t *testing.T) {
	// A readable directory where every file fails to parse is still a
	// usable (empty) corpus, not a fatal condition.
	dir := t.TempDir()
	writeFile(t, dir, "broken1.RULE", "no frontmatter at all\n")
	writeFile(t, dir, "broken2.RULE", "---\nis_license_notice: yes\n---\nmissing expression\n")

	rules, err := LoadRules(dir, quietLogger())
	if rules == nil {
		t.Fatal("all-broken corpus returned a nil slice; must be empty, not nil")
	}
	if len(rules) != 0 {
		t.Errorf("got %d rules, want 0", len(rules))
	}
	if err == nil {
		t.Error("parse failures did not surface in the aggregated error")
	}
}

func TestNewEngineToleratesAllBrokenRulesDir(t *testing.T) {
	rulesDir := t.TempDir()
	licensesDir := t.TempDir()
	writeFile(t, rulesDir, "broken.RULE", "no frontmatter at all\n")
	writeFile(t, licensesDir, "mit.LICENSE",
		"---\nkey: mit\nname: MIT License\nspdx_license_key: MIT\n---\n"+mitText+"\n")

	engine, err := NewEngine(Options{
		RulesDir:    rulesDir,
		LicensesDir: licensesDir,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed on an all-broken rules directory: %v", err)
	}
	if engine.RuleCount() != 1 {
		t.Errorf("RuleCount = %d, want 1 (the synthetic license rule)", engine.RuleCount())
	}
}

func TestLoadRulesMissingDir(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "nope"), quietLogger()); err == nil {
		t.Error("missing directory accepted")
	}
}

func TestLoadCorpusEndToEnd(t *testing.T) {
	rulesDir := t.TempDir()
	licensesDir := t.TempDir()
	writeFile(t, rulesDir, "mit_notice.RULE",
		"---\nlicense_expression: mit\nis_license_notice: yes\n---\nLicensed under the MIT license\n")
	writeFile(t, licensesDir, "mit.LICENSE",
		"---\nkey: mit\nname: MIT License\nspdx_license_key: MIT\n---\n"+mitText+"\n")

	engine, err := NewEngine(Options{
		RulesDir:    rulesDir,
		LicensesDir: licensesDir,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if engine.RuleCount() != 2 {
		t.Errorf("RuleCount = %d, want 2 (rule + synthetic license rule)", engine.RuleCount())
	}

	ds := engine.Detect("Licensed under the MIT license")
	if len(ds) != 1 || ds[0].LicenseExpression != "mit" {
		t.Fatalf("detections = %+v, want one mit detection", ds)
	}
}
