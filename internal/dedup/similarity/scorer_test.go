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
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenScorer_DiacriticsIgnored(t *testing.T) {
	assert.Equal(t, 100, NewTokenScorer().Score("Joao Pereira", "João Pereira"))
}

func TestTokenScorer_Reflexive(t *testing.T) {
	scorer := NewTokenScorer()
	for _, name := range []string{"", "Ana Costa", "ACME, Lda.", "Zé"} {
		assert.Equal(t, 100, scorer.Score(name, name), name)
	}
}

func TestTokenScorer_Symmetric(t *testing.T) {
	scorer := NewTokenScorer()
	names := []string{"Ana Costa", "Ana Costa Silva", "Pedro Silva", "Maria Silva Lda", "Costa, Ana", "xyz", ""}
	for _, a := range names {
		for _, b := range names {
			assert.Equal(t, scorer.Score(a, b), scorer.Score(b, a), "%q vs %q", a, b)
		}
	}
}

func TestTokenScorer_Bounds(t *testing.T) {
	scorer := NewTokenScorer()

	assert.Equal(t, 0, scorer.Score("abc", "xyz"))
	assert.Equal(t, 0, scorer.Score("abc", ""))
	assert.Equal(t, 100, scorer.Score("Costa, Ana", "Ana Costa"))
	assert.Equal(t, 100, scorer.Score("Maria Silva", "Maria Silva Lda"))

	score := scorer.Score("Ana Costa", "Pedro Silva")
	assert.GreaterOrEqual(t, score, 0)
	assert.Less(t, score, 70)
}

func TestTokenScorer_NormalizedInputsScoreTheSame(t *testing.T) {
	scorer := NewTokenScorer()
	assert.Equal(t, scorer.Score("  JOÃO   Pereira ", "Joao Pereyra"),
		scorer.ScoreNormalized("joao pereira", "joao pereyra"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, ratio("", ""))
	assert.Equal(t, 0, ratio("abc", ""))
	assert.Equal(t, 75, ratio("abcd", "abce"))
	assert.Equal(t, 80, ratio("sousa", "souza"))
}

func TestRatioCountsRunes(t *testing.T) {
	assert.Equal(t, 75, ratio("joão", "joao"))
	assert.Equal(t, 57, ratio("kitten", "sitting"))
}

func TestTokenScorer_ScoreBoundNeverBelowScore(t *testing.T) {
	scorer := NewTokenScorer()
	rng := rand.New(rand.NewSource(11))
	words := []string{"eco", "ecotech", "ekotech", "tech", "acme", "akme", "lda", "sa", "ana", "anna",
		"sousa", "souza", "costa", "kosta", "joao", "joão"}
	name := func() string {
		n := 1 + rng.Intn(3)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}

	for i := 0; i < 2000; i++ {
		a, b := name(), name()
		assert.GreaterOrEqual(t, scorer.ScoreBound(a, b), scorer.ScoreNormalized(a, b), "%q vs %q", a, b)
	}
}

func TestTokenScorer_ScoreBoundWithoutSharedTokens(t *testing.T) {
	scorer := NewTokenScorer()
	assert.Equal(t, 86, scorer.ScoreBound("ecotech", "ekotech"))
	assert.Equal(t, 86, scorer.ScoreNormalized("ecotech", "ekotech"))
	assert.Equal(t, 100, scorer.ScoreBound("acme lda", "lda"))
	assert.Less(t, scorer.ScoreBound("acme", "rui costa"), 50)
}
