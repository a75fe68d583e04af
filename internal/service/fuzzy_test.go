package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

func TestPhoneticRU(t *testing.T) {
	tests := map[string]string{
		"Eminem":  "эминем",
		"Shakira": "шакира",
		"Madonna": "мадонна",
		"Кино":    "кино",
		"Алёна":   "алена",
		"  ":      "",
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, PhoneticRU(name))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("кино", "кино"))
	assert.Equal(t, 75, Similarity("кино", "кина"))
	assert.Equal(t, 100, Similarity("", ""))
	assert.Equal(t, 0, Similarity("abc", "xyz"))
}

func TestPartialSimilarity(t *testing.T) {
	assert.Equal(t, 100, PartialSimilarity("кино", "группа кино - звезда"))
	assert.Equal(t, 100, PartialSimilarity("группа кино - звезда", "кино"))
	assert.Equal(t, 0, PartialSimilarity("", "кино"))
	assert.Equal(t, 100, PartialSimilarity("", ""))
}

func TestBestMatch(t *testing.T) {
	index, score := BestMatch("кино", []string{"Ария", "кино - звезда", "король и шут"})
	assert.Equal(t, 1, index)
	assert.Equal(t, 100, score)

	index, score = BestMatch(pkg.NormalizePhrase("Алёна Апина"), []string{PhoneticRU("Алёна Апина"), PhoneticRU("Ария")})
	assert.Equal(t, 0, index)
	assert.Equal(t, 100, score)

	index, score = BestMatch("кино", nil)
	assert.Equal(t, -1, index)
	assert.Equal(t, -1, score)
}
