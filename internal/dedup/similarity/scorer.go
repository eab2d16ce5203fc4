/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/wso2/entity-consolidation-service/internal/dedup/normalizer"
)

// Scorer rates how alike two names are on a 0 to 100 scale.
type Scorer interface {
	Score(a, b string) int
}

// TokenScorer scores names by the better of their token sort and token set ratios.
type TokenScorer struct{}

// NewTokenScorer returns the default name scorer.
func NewTokenScorer() *TokenScorer {
	return &TokenScorer{}
}

// Score normalizes both names and compares them. Identical names score 100, names with no
// characters in common score 0.
func (s *TokenScorer) Score(a, b string) int {
	return s.ScoreNormalized(normalizer.NormalizeName(a), normalizer.NormalizeName(b))
}

// ScoreNormalized compares names that were already passed through NormalizeName.
func (s *TokenScorer) ScoreNormalized(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	tokensA := normalizer.Tokens(a)
	tokensB := normalizer.Tokens(b)
	return max(tokenSortRatio(tokensA, tokensB), tokenSetRatio(tokensA, tokensB))
}

func tokenSortRatio(a, b []string) int {
	return ratio(joinSorted(a), joinSorted(b))
}

// tokenSetRatio compares the shared tokens against each side's full token set, so a name that
// extends another scores high.
func tokenSetRatio(a, b []string) int {
	setA := toSet(a)
	setB := toSet(b)

	var shared, onlyA, onlyB []string
	for token := range setA {
		if setB[token] {
			shared = append(shared, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if !setA[token] {
			onlyB = append(onlyB, token)
		}
	}

	base := joinSorted(shared)
	withA := strings.TrimSpace(base + " " + joinSorted(onlyA))
	withB := strings.TrimSpace(base + " " + joinSorted(onlyB))

	best := ratio(withA, withB)
	if base != "" {
		best = max(best, ratio(base, withA), ratio(base, withB))
	}
	return best
}

// ratio is the Levenshtein similarity of two strings scaled to 0..100.
func ratio(a, b string) int {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 100
	}
	return scale(levenshtein.ComputeDistance(a, b), maxLen)
}

func scale(distance, maxLen int) int {
	return int(math.Round((1.0 - float64(distance)/float64(maxLen)) * 100))
}

// ScoreBound returns a value never below ScoreNormalized(a, b), computed without edit distance.
// Names sharing a token are bounded by 100. Otherwise both ratios are bounded through the
// character multiset difference, which never exceeds the edit distance.
func (s *TokenScorer) ScoreBound(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	tokensA := normalizer.Tokens(a)
	tokensB := normalizer.Tokens(b)
	setA := toSet(tokensA)
	setB := toSet(tokensB)
	for token := range setA {
		if setB[token] {
			return 100
		}
	}
	return max(ratioBound(strings.Join(tokensA, " "), strings.Join(tokensB, " ")),
		ratioBound(strings.Join(keys(setA), " "), strings.Join(keys(setB), " ")))
}

// ratioBound bounds ratio(a, b) from above.
func ratioBound(a, b string) int {
	counts := make(map[rune]int)
	lenA, lenB := 0, 0
	for _, r := range a {
		counts[r]++
		lenA++
	}
	for _, r := range b {
		counts[r]--
		lenB++
	}
	onlyA, onlyB := 0, 0
	for _, c := range counts {
		if c > 0 {
			onlyA += c
		} else {
			onlyB -= c
		}
	}
	maxLen := max(lenA, lenB)
	if maxLen == 0 {
		return 100
	}
	return scale(max(onlyA, onlyB), maxLen)
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for token := range set {
		out = append(out, token)
	}
	return out
}

func joinSorted(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}
