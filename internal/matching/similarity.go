// Package matching scores how closely two exam question texts agree.
//
// The score combines three components: key-phrase overlap (instructional
// phrases and quantities), token similarity with edit-distance tolerance,
// and the longest in-order run of matching tokens.
package matching

import (
	"unicode"
	"unicode/utf8"
)

const (
	keyPhraseWeight = 0.4
	tokenWeight     = 0.4
	orderWeight     = 0.2
)

// Score holds the components and result of one comparison.
type Score struct {
	KeyPhrase float64 `json:"key_phrase"`
	Token     float64 `json:"token"`
	Order     float64 `json:"order"`
	Combined  float64 `json:"combined"`
	Final     float64 `json:"final"`
}

// Similarity compares two question texts. Combined weighs key phrases,
// tokens and order 40/40/20, with a missing key-phrase component counting
// as 0. Final is the larger of the weighted combination and the key-phrase or token component. The token
// floor needs tokens on both sides; the key-phrase floor needs at least two
// key phrases on each side so a single shared instruction cannot carry a
// match.
func Similarity(a, b string) Score {
	ta, tb := Tokens(a), Tokens(b)

	var s Score
	kp, phrases := keyPhraseScore(a, b)
	tok, tokOK := tokenScore(ta, tb)
	s.KeyPhrase = kp
	s.Token = tok
	s.Order = orderScore(ta, tb)
	s.Combined = keyPhraseWeight*kp + tokenWeight*tok + orderWeight*s.Order

	s.Final = s.Combined
	if phrases >= 2 {
		s.Final = max(s.Final, kp)
	}
	if tokOK {
		s.Final = max(s.Final, tok)
	}
	return s
}

// keyPhraseScore is the Jaccard overlap of key phrases, scaled by the overlap
// of numeric literals when both texts contain numbers. The second result is
// the smaller phrase count, at least 1 when either text has phrases.
func keyPhraseScore(a, b string) (float64, int) {
	pa, pb := KeyPhrases(a), KeyPhrases(b)
	if len(pa) == 0 && len(pb) == 0 {
		return 0, 0
	}

	score := jaccard(pa, pb)

	na, nb := Numbers(a), Numbers(b)
	if len(na) > 0 && len(nb) > 0 {
		score *= jaccard(na, nb)
	}
	return score, max(min(len(pa), len(pb)), 1)
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}

	shared := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, v := range b {
		if seen[v] {
			continue
		}
		seen[v] = true
		if set[v] {
			shared++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// tokenScore greedily pairs tokens, exact matches first, and returns
// matched / (len(a) + len(b) - matched).
func tokenScore(a, b []string) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}

	used := make([]bool, len(b))
	pending := make([]string, 0, len(a))
	matched := 0

	for _, t := range a {
		if j := findToken(t, b, used, false); j >= 0 {
			used[j] = true
			matched++
			continue
		}
		pending = append(pending, t)
	}
	for _, t := range pending {
		if j := findToken(t, b, used, true); j >= 0 {
			used[j] = true
			matched++
		}
	}

	return float64(matched) / float64(len(a)+len(b)-matched), true
}

func findToken(t string, b []string, used []bool, fuzzy bool) int {
	for j, u := range b {
		if used[j] {
			continue
		}
		if fuzzy {
			if tokensMatch(t, u) {
				return j
			}
		} else if t == u {
			return j
		}
	}
	return -1
}

// tokensMatch reports whether two tokens are equal or within len/5 edits of
// each other, measured on the shorter token. Numbers must match exactly.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if numeric(a) || numeric(b) {
		return false
	}
	limit := min(utf8.RuneCountInString(a), utf8.RuneCountInString(b)) / 5
	if limit == 0 {
		return false
	}
	return levenshtein(a, b, limit) <= limit
}

func numeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return s != ""
}

// levenshtein computes edit distance, stopping early once every cell in a
// row exceeds limit.
func levenshtein(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		best := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			best = min(best, curr[j])
		}
		if best > limit {
			return best
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// orderScore is the longest run of consecutive tokens matching in order,
// divided by the shorter token count.
func orderScore(a, b []string) float64 {
	shorter := min(len(a), len(b))
	if shorter == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	longest := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if tokensMatch(a[i-1], b[j-1]) {
				curr[j] = prev[j-1] + 1
				longest = max(longest, curr[j])
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return float64(longest) / float64(shorter)
}
