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

// maxTokenID caps the vocabulary: token ids are 16-bit so two ids pack into
// one automaton byte pair.
const maxTokenID = 1<<16 - 1

// dictionary maps token strings to 16-bit ids. Ids below lenLegalese are
// reserved at construction for the curated legalese vocabulary; every other
// token gets the next free id on first sight during indexing. Multiple
// spellings may share one legalese id ("license"/"licence").
//
// The dictionary is mutated only by the index builder; once the index is
// built it is read-only.
type dictionary struct {
	ids         map[string]uint16
	lenLegalese int
	nextID      int
}

// newDictionary creates a dictionary pre-populated with the legalese
// vocabulary in the low id range.
func newDictionary() *dictionary {
	d := &dictionary{
		ids:         make(map[string]uint16, 4*len(legaleseWords)),
		lenLegalese: len(legaleseWords),
		nextID:      len(legaleseWords),
	}
	for id, words := range legaleseWords {
		for _, w := range words {
			d.ids[w] = uint16(id)
		}
	}
	return d
}

// getOrAssign returns the id for token, assigning the next free id when the
// token is new. The bool result is false when the vocabulary is full, in
// which case the token must be treated as unknown.
func (d *dictionary) getOrAssign(token string) (uint16, bool) {
	if id, ok := d.ids[token]; ok {
		return id, true
	}
	if d.nextID > maxTokenID {
		return 0, false
	}
	id := uint16(d.nextID)
	d.nextID++
	d.ids[token] = id
	return id, true
}

// lookup returns the id for a known token.
func (d *dictionary) lookup(token string) (uint16, bool) {
	id, ok := d.ids[token]
	return id, ok
}

// isLegalese reports whether the id belongs to the high-value vocabulary.
func (d *dictionary) isLegalese(id uint16) bool {
	return int(id) < d.lenLegalese
}

func (d *dictionary) len() int {
	return len(d.ids)
}
