package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const wildcard = "*"

var errInvalidTrigger = errors.New("invalid trigger")

// Match is the trigger chosen for an utterance.
type Match struct {
	Kind   CommandKind
	Phrase string
	// Args is the normalized utterance after the trigger's leading words.
	Args string
}

type trigger struct {
	binding Binding
	// segments are literal word runs; every segment after the first follows a wildcard.
	segments [][]string
	trailing bool
	literal  int
}

// Registry resolves utterances to commands. It is immutable once built.
type Registry struct {
	triggers []trigger
}

func NewRegistry(bindings []Binding) (*Registry, error) {
	triggers := make([]trigger, 0, len(bindings))

	for _, binding := range bindings {
		t, err := parseTrigger(binding)
		if err != nil {
			return nil, err
		}

		triggers = append(triggers, t)
	}

	return &Registry{triggers: triggers}, nil
}

func parseTrigger(binding Binding) (trigger, error) {
	t := trigger{binding: binding}

	var current []string
	for _, word := range strings.Fields(pkg.NormalizePhrase(binding.Phrase)) {
		if word != wildcard {
			current = append(current, word)
			t.literal += utf8.RuneCountInString(word)
			t.trailing = false

			continue
		}

		if len(t.segments) == 0 && len(current) == 0 {
			return trigger{}, fmt.Errorf("%w: %q starts with a wildcard", errInvalidTrigger, binding.Phrase)
		}

		if len(current) > 0 {
			t.segments = append(t.segments, current)
			current = nil
		}

		t.trailing = true
	}

	if len(current) > 0 {
		t.segments = append(t.segments, current)
	}

	if len(t.segments) == 0 {
		return trigger{}, fmt.Errorf("%w: %q is empty", errInvalidTrigger, binding.Phrase)
	}

	return t, nil
}

// match reports whether words satisfy the trigger and how many leading words its first segment took.
func (that *trigger) match(words []string) (int, bool) {
	head := that.segments[0]
	if !hasPrefix(words, head) {
		return 0, false
	}

	pos := len(head)
	for _, segment := range that.segments[1:] {
		at := indexFrom(words, segment, pos+1)
		if at < 0 {
			return 0, false
		}

		pos = at + len(segment)
	}

	if that.trailing && pos >= len(words) {
		return 0, false
	}

	return len(head), true
}

// Match picks the matching trigger with the most literal characters; earlier bindings win ties.
func (that *Registry) Match(utterance string) (Match, bool) {
	words := strings.Fields(pkg.NormalizePhrase(utterance))
	if len(words) == 0 {
		return Match{}, false
	}

	var (
		best     *trigger
		bestHead int
	)

	for i := range that.triggers {
		t := &that.triggers[i]

		head, ok := t.match(words)
		if !ok {
			continue
		}

		if best == nil || t.literal > best.literal {
			best, bestHead = t, head
		}
	}

	if best == nil {
		return Match{}, false
	}

	return Match{
		Kind:   best.binding.Kind,
		Phrase: best.binding.Phrase,
		Args:   strings.Join(words[bestHead:], " "),
	}, true
}

func hasPrefix(words, prefix []string) bool {
	if len(prefix) > len(words) {
		return false
	}

	for i := range prefix {
		if words[i] != prefix[i] {
			return false
		}
	}

	return true
}

func indexFrom(words, segment []string, from int) int {
	for i := from; i+len(segment) <= len(words); i++ {
		if hasPrefix(words[i:], segment) {
			return i
		}
	}

	return -1
}
