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
	"io"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
)

// mitText is the canonical MIT license body used as corpus and query fixture.
const mitText = `Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.`

// mitTruncated is roughly the first half of the MIT text, for partial-match
// scenarios.
const mitTruncated = `Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.`

const apacheNoticeText = `Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.`

// testCorpus returns a small but realistic rule and license corpus.
func testCorpus() ([]*Rule, []*License) {
	rules := []*Rule{
		{
			Identifier:        "mit_notice_1.RULE",
			LicenseExpression: "mit",
			Text:              "Licensed under the MIT license",
			IsLicenseNotice:   true,
			Relevance:         100,
		},
		{
			Identifier:         "mit_ref_1.RULE",
			LicenseExpression:  "mit",
			Text:               "MIT license",
			IsLicenseReference: true,
			Relevance:          100,
		},
		{
			Identifier:        "apache_notice_1.RULE",
			LicenseExpression: "apache-2.0",
			Text:              apacheNoticeText,
			IsLicenseNotice:   true,
			Relevance:         100,
		},
		{
			Identifier:         "gpl_ref_bare.RULE",
			LicenseExpression:  "gpl-2.0",
			Text:               "GPL",
			IsLicenseReference: true,
			Relevance:          50,
		},
		{
			Identifier:      "fp_all_rights.RULE",
			Text:            "all rights reserved",
			IsFalsePositive: true,
			Relevance:       100,
		},
	}
	licenses := []*License{
		{
			Key:            "mit",
			Name:           "MIT License",
			ShortName:      "MIT",
			Category:       "Permissive",
			SPDXLicenseKey: "MIT",
			Text:           mitText,
		},
		{
			Key:            "apache-2.0",
			Name:           "Apache License 2.0",
			ShortName:      "Apache 2.0",
			Category:       "Permissive",
			SPDXLicenseKey: "Apache-2.0",
		},
		{
			Key:            "gpl-2.0",
			Name:           "GNU General Public License 2.0",
			ShortName:      "GPL 2.0",
			Category:       "Copyleft",
			SPDXLicenseKey: "GPL-2.0-only",
		},
	}
	return rules, licenses
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	rules, licenses := testCorpus()
	return NewEngineFromCorpus(rules, licenses, Options{Logger: quietLogger()})
}

// textDiff renders a readable character diff for test failure messages.
func textDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	return dmp.DiffPrettyText(diffs)
}
