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

const (
	// minMatchLength is the floor for how many tokens a partial match of a
	// mid-sized rule must cover.
	minMatchLength = 4

	// minMatchHighLength is the floor for high-value tokens in such a match.
	minMatchHighLength = 3

	// smallRule: rules shorter than this match exactly or with most of their
	// tokens present.
	smallRule = 15

	// tinyRule: rules shorter than this never match approximately.
	tinyRule = 6
)

// computeThresholdsOccurrences derives the minimum matched lengths for a rule
// from its total length and high-value token occurrence count. A coverage of
// zero means no explicit minimum coverage was set. The returned coverage may
// tighten the rule's requirement for short rules.
func computeThresholdsOccurrences(coverage, length, highLength int) (newCoverage, minMatched, minHighMatched int) {
	if coverage == 100 {
		return 100, length, highLength
	}
	switch {
	case length < 3:
		return 100, length, highLength
	case length < 10:
		return 80, length, highLength
	case length < 30:
		return 50, length / 2, min(highLength, minMatchHighLength)
	case length < 200:
		return coverage, minMatchLength, min(highLength, minMatchHighLength)
	default:
		return coverage, length / 10, highLength / 10
	}
}

// computeThresholdsUnique is the unique-token companion of
// computeThresholdsOccurrences with breakpoints at 5, 10, 20 and 200.
func computeThresholdsUnique(coverage, length, lengthUnique, highLengthUnique int) (minMatchedUnique, minHighMatchedUnique int) {
	if coverage == 100 {
		return lengthUnique, highLengthUnique
	}
	switch {
	case length > 200:
		return length / 10, highLengthUnique / 10
	case length < 5:
		return lengthUnique, highLengthUnique
	case length < 10:
		if lengthUnique < 2 {
			return lengthUnique, highLengthUnique
		}
		return lengthUnique - 1, highLengthUnique
	case length < 20:
		return highLengthUnique, highLengthUnique
	default:
		return minMatchLength, min(highLengthUnique, minMatchHighLength)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
