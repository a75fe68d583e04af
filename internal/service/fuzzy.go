package service

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	phoneticDigraphs = map[string]string{
		"ch": "ч", "sh": "ш", "th": "с", "ph": "ф", "kh": "х",
		"ee": "и", "oo": "у", "ea": "и", "ie": "и", "ou": "ау",
	}

	phoneticLetters = map[rune]string{
		'a': "а", 'b': "б", 'c': "к", 'd': "д", 'e': "е", 'f': "ф",
		'g': "г", 'h': "х", 'i': "и", 'j': "дж", 'k': "к", 'l': "л",
		'm': "м", 'n': "н", 'o': "о", 'p': "п", 'q': "кв", 'r': "р",
		's': "с", 't': "т", 'u': "у", 'v': "в", 'w': "в", 'x': "кс", 'y': "и", 'z': "з",
	}

	phoneticExceptions = map[string]string{
		"eminem": "эминем",
		"bts":    "бтс",
	}
)

// PhoneticRU spells a Latin name the way a Russian speaker would pronounce it,
// so "Eminem" can be found by "эминем". Non-Latin characters are kept, ё folded to е
// as spoken queries are.
func PhoneticRU(name string) string {
	clean := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "ё", "е")
	if clean == "" {
		return ""
	}

	if exception, ok := phoneticExceptions[clean]; ok {
		return exception
	}

	runes := []rune(clean)

	var b strings.Builder
	for i := 0; i < len(runes); {
		if i+1 < len(runes) {
			if ru, ok := phoneticDigraphs[string(runes[i:i+2])]; ok {
				b.WriteString(ru)
				i += 2

				continue
			}
		}

		if ru, ok := phoneticLetters[runes[i]]; ok {
			b.WriteString(ru)
		} else {
			b.WriteRune(runes[i])
		}

		i++
	}

	return b.String()
}

// Similarity scores two strings from 0 to 100 by edit distance.
func Similarity(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 100
	}

	distance := levenshtein.ComputeDistance(a, b)

	return 100 * (longest - distance) / longest
}

// PartialSimilarity is the best Similarity of the shorter string against any
// equally long window of the longer one.
func PartialSimilarity(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}

		return 0
	}

	best := 0
	for start := 0; start+len(short) <= len(long); start++ {
		score := Similarity(string(short), string(long[start:start+len(short)]))
		if score > best {
			best = score
		}

		if best == 100 {
			break
		}
	}

	return best
}

// BestMatch returns the index of the choice closest to query and its score, or -1 when choices is empty.
func BestMatch(query string, choices []string) (int, int) {
	bestIndex, bestScore := -1, -1

	for i, choice := range choices {
		if score := PartialSimilarity(query, choice); score > bestScore {
			bestIndex, bestScore = i, score
		}
	}

	return bestIndex, bestScore
}
