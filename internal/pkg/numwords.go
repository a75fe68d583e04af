package pkg

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type numberKind int

const (
	kindUnit numberKind = iota
	kindTeen
	kindTen
	kindHundred
)

type numberWord struct {
	value int
	kind  numberKind
}

// numberWords covers nominative, genitive and feminine forms up to nine hundred, ё folded to е.
var numberWords = map[string]numberWord{
	"ноль": {0, kindUnit}, "нуля": {0, kindUnit},
	"один": {1, kindUnit}, "одна": {1, kindUnit}, "одного": {1, kindUnit}, "одной": {1, kindUnit}, "одну": {1, kindUnit},
	"два": {2, kindUnit}, "две": {2, kindUnit}, "двух": {2, kindUnit},
	"три": {3, kindUnit}, "трех": {3, kindUnit},
	"четыре": {4, kindUnit}, "четырех": {4, kindUnit},
	"пять": {5, kindUnit}, "пяти": {5, kindUnit},
	"шесть": {6, kindUnit}, "шести": {6, kindUnit},
	"семь": {7, kindUnit}, "семи": {7, kindUnit},
	"восемь": {8, kindUnit}, "восьми": {8, kindUnit},
	"девять": {9, kindUnit}, "девяти": {9, kindUnit},

	"десять": {10, kindTeen}, "десяти": {10, kindTeen},
	"одиннадцать": {11, kindTeen}, "одиннадцати": {11, kindTeen},
	"двенадцать": {12, kindTeen}, "двенадцати": {12, kindTeen},
	"тринадцать": {13, kindTeen}, "тринадцати": {13, kindTeen},
	"четырнадцать": {14, kindTeen}, "четырнадцати": {14, kindTeen},
	"пятнадцать": {15, kindTeen}, "пятнадцати": {15, kindTeen},
	"шестнадцать": {16, kindTeen}, "шестнадцати": {16, kindTeen},
	"семнадцать": {17, kindTeen}, "семнадцати": {17, kindTeen},
	"восемнадцать": {18, kindTeen}, "восемнадцати": {18, kindTeen},
	"девятнадцать": {19, kindTeen}, "девятнадцати": {19, kindTeen},

	"двадцать": {20, kindTen}, "двадцати": {20, kindTen},
	"тридцать": {30, kindTen}, "тридцати": {30, kindTen},
	"сорок": {40, kindTen}, "сорока": {40, kindTen},
	"пятьдесят": {50, kindTen}, "пятидесяти": {50, kindTen},
	"шестьдесят": {60, kindTen}, "шестидесяти": {60, kindTen},
	"семьдесят": {70, kindTen}, "семидесяти": {70, kindTen},
	"восемьдесят": {80, kindTen}, "восьмидесяти": {80, kindTen},
	"девяносто": {90, kindTen}, "девяноста": {90, kindTen},

	"сто": {100, kindHundred}, "ста": {100, kindHundred},
	"двести": {200, kindHundred}, "двухсот": {200, kindHundred},
	"триста": {300, kindHundred}, "трехсот": {300, kindHundred},
	"четыреста": {400, kindHundred}, "четырехсот": {400, kindHundred},
	"пятьсот": {500, kindHundred}, "пятисот": {500, kindHundred},
	"шестьсот": {600, kindHundred}, "шестисот": {600, kindHundred},
	"семьсот": {700, kindHundred}, "семисот": {700, kindHundred},
	"восемьсот": {800, kindHundred}, "восьмисот": {800, kindHundred},
	"девятьсот": {900, kindHundred}, "девятисот": {900, kindHundred},
}

var (
	unitNames = []string{
		"ноль", "один", "два", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять",
		"десять", "одиннадцать", "двенадцать", "тринадцать", "четырнадцать", "пятнадцать",
		"шестнадцать", "семнадцать", "восемнадцать", "девятнадцать",
	}
	tenNames     = []string{"", "", "двадцать", "тридцать", "сорок", "пятьдесят", "шестьдесят", "семьдесят", "восемьдесят", "девяносто"}
	hundredNames = []string{"", "сто", "двести", "триста", "четыреста", "пятьсот", "шестьсот", "семьсот", "восемьсот", "девятьсот"}
)

// NormalizePhrase lower-cases the phrase, folds ё to е, drops punctuation and collapses whitespace.
func NormalizePhrase(phrase string) string {
	lower := cases.Lower(language.Russian).String(phrase)

	runes := []rune(lower)

	var b strings.Builder
	b.Grow(len(lower))

	for i, r := range runes {
		switch {
		case r == 'ё':
			b.WriteRune('е')
		case (r == ',' || r == '.') && isDecimalSeparator(runes, i):
			b.WriteRune('.')
		case r == ',' || r == '.' || r == '!' || r == '?' || r == ';' || r == ':' || r == '"' || r == '«' || r == '»':
			b.WriteRune(' ')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isDecimalSeparator(runes []rune, i int) bool {
	return i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

// ReplaceNumberWords replaces every run of number words in fields with its digits,
// so "двадцать пять" becomes "25".
func ReplaceNumberWords(fields []string) []string {
	out := make([]string, 0, len(fields))

	for i := 0; i < len(fields); {
		value, n := readNumber(fields[i:])
		if n == 0 {
			out = append(out, fields[i])
			i++

			continue
		}

		out = append(out, strconv.Itoa(value))
		i += n
	}

	return out
}

// ParseNumber finds the first number in text, spelled in digits or in words.
func ParseNumber(text string) (int, bool) {
	fields := strings.Fields(NormalizePhrase(text))

	for i := range fields {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			return n, true
		}

		if value, n := readNumber(fields[i:]); n > 0 {
			return value, true
		}
	}

	return 0, false
}

// readNumber reads a compound number from the head of fields and reports how many fields it used.
func readNumber(fields []string) (int, int) {
	total, used := 0, 0
	prev := numberKind(-1)

	for _, field := range fields {
		word, ok := numberWords[field]
		if !ok || !canFollow(prev, used, word.kind) {
			break
		}

		total += word.value
		prev = word.kind
		used++
	}

	return total, used
}

func canFollow(prev numberKind, used int, next numberKind) bool {
	if used == 0 {
		return true
	}

	switch prev {
	case kindHundred:
		return next != kindHundred
	case kindTen:
		return next == kindUnit
	default:
		return false
	}
}

// SayNumber spells n in words for 0 <= n < 1000.
func SayNumber(n int) string {
	if n < 0 || n >= 1000 {
		return strconv.Itoa(n)
	}

	if n < len(unitNames) {
		return unitNames[n]
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundredNames[h])
	}

	rest := n % 100
	switch {
	case rest == 0:
	case rest < len(unitNames):
		parts = append(parts, unitNames[rest])
	default:
		parts = append(parts, tenNames[rest/10])
		if u := rest % 10; u > 0 {
			parts = append(parts, unitNames[u])
		}
	}

	return strings.Join(parts, " ")
}

// Plural picks the Russian plural form for n: one (1, 21), few (2-4, 22-24) or many.
func Plural(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}

	switch mod10, mod100 := n%10, n%100; {
	case mod10 == 1 && mod100 != 11:
		return one
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return few
	default:
		return many
	}
}
