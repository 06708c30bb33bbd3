package dictionary

import (
	"sort"
	"strings"
)

// Suggestion is an exact word that resembles a word with no entry.
type Suggestion struct {
	Word  string
	Score int
}

// Suggest ranks the registered exact words by how closely they resemble
// word and returns at most limit of them (all when limit <= 0). A word
// resembles another when the shorter one's letters appear in order in the
// longer one, ignoring case. Patterns are never suggested.
func (d *Dictionary) Suggest(word string, limit int) []Suggestion {
	query := []rune(strings.ToLower(word))
	if len(query) == 0 {
		return nil
	}

	d.mu.RLock()
	var results []Suggestion
	for candidate := range d.exact {
		if score := similarity(query, []rune(strings.ToLower(candidate))); score > 0 {
			results = append(results, Suggestion{Word: candidate, Score: score})
		}
	}
	d.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Word < results[j].Word
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// similarity scores the in-order match of the shorter of a and b inside the
// longer one, or returns 0 if there is none.
func similarity(a, b []rune) int {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	matches := make([]int, 0, len(short))
	for i, j := 0, 0; i < len(long) && j < len(short); i++ {
		if long[i] == short[j] {
			matches = append(matches, i)
			j++
		}
	}
	if len(matches) != len(short) {
		return 0
	}

	score := 100
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	if matches[0] == 0 {
		score += 25
	}

	// Gaps and unmatched letters
	gap := matches[len(matches)-1] - matches[0] - len(matches) + 1
	score -= gap * 2
	score -= matches[0]
	score -= (len(long) - len(short)) * 10

	if score < 1 {
		score = 1
	}
	return score
}
