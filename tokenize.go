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
	"regexp"
	"strings"
)

// wordRE extracts word-like runs: letters and digits with an optional internal
// or trailing "+" (so "gpl2+" and "c++" survive as "gpl2+" and "c+").
// Underscores split words.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+\+?[\p{L}\p{N}]*`)

// requiredPhraseRE additionally captures the {{ and }} phrase markers used in
// rule texts.
var requiredPhraseRE = regexp.MustCompile(`(?:[\p{L}\p{N}]+\+?[\p{L}\p{N}]*|\{\{|\}\})`)

const (
	requiredPhraseOpen  = "{{"
	requiredPhraseClose = "}}"
)

// stopwords are tokens ignored when indexing rules: HTML tags and entities,
// common comment markers, CSS and doc markup noise.
var stopwords = map[string]bool{
	// XML character references
	"amp": true, "apos": true, "gt": true, "lt": true, "nbsp": true, "quot": true,
	// HTML tags
	"a": true, "abbr": true, "alt": true, "blockquote": true, "body": true,
	"br": true, "class": true, "div": true, "em": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "hr": true, "href": true, "img": true,
	"li": true, "ol": true, "p": true, "pre": true, "rel": true, "script": true,
	"span": true, "src": true, "td": true, "th": true, "tr": true, "ul": true,
	// comment line markers: batch files and autotools
	"rem": true, "dnl": true,
	// DocBook tags
	"para": true, "ulink": true,
	// HTML punctuation and entities
	"bdquo": true, "bull": true, "bullet": true, "colon": true, "comma": true,
	"emdash": true, "emsp": true, "ensp": true, "ge": true, "hairsp": true,
	"ldquo": true, "ldquor": true, "le": true, "lpar": true, "lsaquo": true,
	"lsquo": true, "lsquor": true, "mdash": true, "ndash": true, "numsp": true,
	"period": true, "puncsp": true, "raquo": true, "rdquo": true, "rdquor": true,
	"rpar": true, "rsaquo": true, "rsquo": true, "rsquor": true, "sbquo": true,
	"semi": true, "thinsp": true, "tilde": true,
	// XML char entities
	"x3c": true, "x3e": true,
	// seen in many CSS blocks
	"lists": true, "side": true, "nav": true, "height": true, "auto": true,
	"border": true, "padding": true, "width": true,
	// Perl PODs
	"head1": true, "head2": true, "head3": true,
	// common in C literals and shell
	"printf": true, "echo": true,
}

// tokenize splits text into lowercased word tokens, dropping stopwords. This
// is the tokenization used for rule texts and for matching.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	for _, tok := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if !stopwords[tok] {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// tokenizeKeepStopwords splits text into lowercased word tokens, keeping
// stopwords. Query construction uses this variant so stopword positions can
// be accounted for separately.
func tokenizeKeepStopwords(text string) []string {
	if text == "" {
		return nil
	}
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// posSpan is an inclusive range of token positions.
type posSpan struct {
	start, end int
}

func (p posSpan) contains(pos int) bool {
	return pos >= p.start && pos <= p.end
}

func (p posSpan) len() int {
	return p.end - p.start + 1
}

// requiredPhraseSpans parses {{...}} markers from a rule text and returns the
// token position ranges they enclose, positions being counted over the
// stopword-free token stream. The ok result is false for invalid marker
// structure: nested or unclosed braces, or empty {{}} phrases.
func requiredPhraseSpans(text string) (spans []posSpan, ok bool) {
	inPhrase := false
	phraseStart := -1
	ipos := 0

	for _, tok := range requiredPhraseRE.FindAllString(strings.ToLower(text), -1) {
		switch tok {
		case requiredPhraseOpen:
			if inPhrase {
				return nil, false
			}
			inPhrase = true
			phraseStart = -1
		case requiredPhraseClose:
			if !inPhrase {
				return nil, false
			}
			if phraseStart < 0 {
				return nil, false
			}
			spans = append(spans, posSpan{start: phraseStart, end: ipos - 1})
			inPhrase = false
		default:
			if stopwords[tok] {
				continue
			}
			if inPhrase && phraseStart < 0 {
				phraseStart = ipos
			}
			ipos++
		}
	}

	if inPhrase {
		return nil, false
	}
	return spans, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isYear(s string) bool {
	return len(s) == 4 && isDigits(s)
}
