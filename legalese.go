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

// legaleseWords is the curated high-value vocabulary. The slice index is the
// token id, so these words occupy the low id range [0, len(legaleseWords)).
// Words grouped in one entry are equivalent spellings sharing a single id
// (US/UK variants mostly).
//
// Standalone "copyright" is deliberately absent: it is a marker word (see
// markerWords) that appears in too many non-license contexts to carry
// high-value weight on its own.
var legaleseWords = [][]string{
	{"license", "licence"},
	{"licensed", "licenced"},
	{"licensee", "licencee"},
	{"licensor", "licencor"},
	{"licenses", "licences"},
	{"licensing", "licencing"},
	{"sublicense", "sublicence"},
	{"sublicenses", "sublicences"},
	{"sublicensing"},
	{"relicense", "relicence"},
	{"copyrighted"},
	{"copyrightable"},
	{"permission"},
	{"permissions"},
	{"permitted"},
	{"redistribute"},
	{"redistribution"},
	{"redistributions"},
	{"redistributed"},
	{"distribute"},
	{"distribution"},
	{"distributions"},
	{"distributing"},
	{"derivative"},
	{"derivatives"},
	{"derived"},
	{"warranty"},
	{"warranties"},
	{"merchantability"},
	{"noninfringement", "infringement"},
	{"fitness"},
	{"disclaimer"},
	{"disclaimers"},
	{"disclaimed"},
	{"liability"},
	{"liabilities"},
	{"liable"},
	{"damages"},
	{"tort"},
	{"negligence"},
	{"consequential"},
	{"incidental"},
	{"exemplary"},
	{"punitive"},
	{"indemnify"},
	{"indemnification"},
	{"indemnified"},
	{"hereby"},
	{"herein"},
	{"hereunder"},
	{"hereinafter"},
	{"thereof"},
	{"therein"},
	{"whatsoever"},
	{"foregoing"},
	{"aforementioned"},
	{"notwithstanding"},
	{"pursuant"},
	{"accordance"},
	{"applicable"},
	{"governing"},
	{"jurisdiction"},
	{"jurisdictions"},
	{"statutory"},
	{"enforceable"},
	{"unenforceable"},
	{"severability"},
	{"waiver"},
	{"waived"},
	{"terminate"},
	{"terminated"},
	{"termination"},
	{"terminates"},
	{"breach"},
	{"grant"},
	{"granted"},
	{"grants"},
	{"granting"},
	{"grantor"},
	{"royalty"},
	{"royalties"},
	{"perpetual"},
	{"irrevocable"},
	{"revocable"},
	{"nonexclusive"},
	{"exclusive"},
	{"worldwide"},
	{"sublicensable"},
	{"transferable"},
	{"assignable"},
	{"obligation"},
	{"obligations"},
	{"obligated"},
	{"covenant"},
	{"covenants"},
	{"stipulation"},
	{"proprietary"},
	{"intellectual"},
	{"patent"},
	{"patents"},
	{"trademarks"},
	{"servicemark", "servicemarks"},
	{"moral"},
	{"attribution"},
	{"acknowledgment", "acknowledgement"},
	{"acknowledgments", "acknowledgements"},
	{"endorse"},
	{"endorsement"},
	{"promote"},
	{"contributors"},
	{"contributor"},
	{"contribution"},
	{"contributions"},
	{"upstream"},
	{"downstream"},
	{"recipient"},
	{"recipients"},
	{"conveyance"},
	{"convey"},
	{"conveyed"},
	{"conveying"},
	{"propagate"},
	{"propagation"},
	{"modify"},
	{"modified"},
	{"modification"},
	{"modifications"},
	{"modifying"},
	{"reproduce"},
	{"reproduction"},
	{"reproducing"},
	{"prepare"},
	{"preparing"},
	{"adaptation"},
	{"adaptations"},
	{"compilation"},
	{"compilations"},
	{"translation"},
	{"translations"},
	{"sublicensed"},
	{"furnished"},
	{"substantial"},
	{"portions"},
	{"notice"},
	{"notices"},
	{"retain"},
	{"retained"},
	{"disclaim"},
	{"expressly"},
	{"implied"},
	{"express"},
	{"implies"},
	{"warrant"},
	{"warrants"},
	{"guarantee"},
	{"guaranty"},
	{"merchantable"},
	{"noncommercial"},
	{"commercial"},
	{"restriction"},
	{"restrictions"},
	{"restricted"},
	{"unrestricted"},
	{"conditions"},
	{"condition"},
	{"terms"},
	{"agreement"},
	{"agreements"},
	{"contract"},
	{"contractual"},
	{"binding"},
	{"lawful"},
	{"unlawful"},
	{"lawsuit"},
	{"litigation"},
	{"arbitration"},
	{"verbatim"},
	{"copyleft"},
	{"freeware"},
	{"shareware"},
	{"nonprofit"},
	{"fsf"},
	{"gnu"},
	{"gpl"},
	{"lgpl"},
	{"agpl"},
	{"mpl"},
	{"epl"},
	{"apl"},
	{"cddl"},
	{"bsd"},
	{"mit"},
	{"apache"},
	{"mozilla"},
	{"zlib"},
	{"openssl"},
	{"cc0"},
	{"spdx"},
	{"osi"},
	{"proprietorship"},
	{"assigns"},
	{"successors"},
	{"heirs"},
	{"lessee"},
	{"lessor"},
	{"sell"},
	{"resell"},
	{"selling"},
	{"offer"},
	{"offering"},
	{"charge"},
	{"fee"},
	{"fees"},
	{"gratis"},
	{"obtaining"},
	{"accompanying"},
	{"accompanied"},
	{"publish"},
	{"publishing"},
	{"merge"},
	{"merging"},
	{"deal"},
	{"dealings"},
	{"exploit"},
	{"exploitation"},
	{"compliance"},
	{"comply"},
	{"complying"},
	{"conformance"},
	{"infringe"},
	{"infringes"},
	{"infringing"},
	{"misrepresentation"},
	{"misrepresented"},
	{"plaintiff"},
	{"defendant"},
	{"counterclaim"},
	{"crossclaim"},
	{"remedy"},
	{"remedies"},
	{"survive"},
	{"survives"},
	{"supersedes"},
	{"amended"},
	{"amendments"},
	{"addendum"},
	{"annex"},
	{"appendix"},
	{"exhibit"},
	{"preamble"},
	{"whereas"},
	{"therefore"},
	{"thereto"},
	{"herewith"},
	{"versions"},
	{"version"},
	{"clause"},
	{"clauses"},
	{"paragraph"},
	{"paragraphs"},
	{"section"},
	{"sections"},
	{"subsection"},
	{"provisions"},
	{"provision"},
	{"entitled"},
	{"entitlement"},
	{"authorized", "authorised"},
	{"authorization", "authorisation"},
	{"unauthorized", "unauthorised"},
	{"exemption"},
	{"exception"},
	{"exceptions"},
	{"limitation"},
	{"limitations"},
	{"limited"},
	{"unlimited"},
	{"disclaims"},
	{"arising"},
	{"connection"},
	{"kind"},
	{"basis"},
	{"particular"},
	{"purpose"},
	{"purposes"},
	{"holders"},
	{"holder"},
	{"authorship"},
	{"assert"},
	{"asserted"},
	{"assertion"},
	{"claims"},
	{"claim"},
	{"claiming"},
	{"entity"},
	{"entities"},
	{"affiliates"},
	{"affiliate"},
	{"subsidiary"},
	{"subsidiaries"},
	{"successor"},
	{"assignee"},
	{"licensable"},
	{"combinations"},
	{"undertake"},
	{"undertakes"},
	{"warranted"},
}

// markerWords are common words that by themselves indicate provenance noise
// (copyright lines, company names, URLs) rather than license language.
// 6-grams built entirely out of these never enter the unknown automaton.
var markerWords = map[string]bool{
	"copyright": true, "c": true, "copyrights": true, "rights": true,
	"reserved": true, "trademark": true, "foundation": true,
	"government": true, "institute": true, "university": true,
	"inc": true, "corp": true, "co": true, "author": true,
	"com": true, "org": true, "net": true, "uk": true, "fr": true,
	"be": true, "de": true, "http": true, "https": true, "www": true,
}
