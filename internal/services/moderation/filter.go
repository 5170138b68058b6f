// Package moderation screens submitted card text and images.
package moderation

import (
	"bufio"
	_ "embed"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/committy/internal/model"
)

//go:embed badwords.txt
var defaultBadWords string

// DefaultWhitelist holds words that contain a listed term but are fine
var DefaultWhitelist = []string{"suck", "scatman", "tit", "xx", "penistone", "scunthorpe", "shit", "homo"}

// ErrFilterNotLoaded is returned when text is screened before a word list is loaded
var ErrFilterNotLoaded = errors.New("profanity filter not loaded")

// pattern is one word-list entry. Prefix and suffix say whether the entry
// may continue into surrounding letters on that side.
type pattern struct {
	word   string
	prefix bool
	suffix bool
}

// Filter detects listed words. Matching ignores case, accents
// and compatibility forms such as full-width letters.
type Filter struct {
	logger *slog.Logger

	mu        sync.RWMutex
	patterns  []pattern
	whitelist []string
	loaded    bool
}

// NewFilter creates an empty Filter
func NewFilter(logger *slog.Logger) *Filter {
	return &Filter{logger: logger}
}

// NewDefaultFilter creates a Filter loaded with the built-in word list and whitelist
func NewDefaultFilter(logger *slog.Logger) *Filter {
	f := NewFilter(logger)
	f.LoadWords(parseWordList(defaultBadWords), DefaultWhitelist)
	return f
}

// LoadFromFile loads entries from a file (one per line, # for comments).
// The current whitelist is kept.
func (f *Filter) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f.mu.RLock()
	whitelist := f.whitelist
	f.mu.RUnlock()

	f.LoadWords(parseWordList(string(data)), whitelist)
	f.logger.Info("loaded word list", slog.String("path", path), slog.Int("words", f.WordCount()))
	return nil
}

// LoadWords replaces the word list and whitelist
func (f *Filter) LoadWords(words, whitelist []string) {
	patterns := make([]pattern, 0, len(words))
	for _, w := range words {
		p := pattern{
			prefix: strings.HasPrefix(w, "*"),
			suffix: strings.HasSuffix(w, "*"),
			word:   fold(strings.Trim(w, "*")),
		}
		if p.word != "" {
			patterns = append(patterns, p)
		}
	}

	folded := make([]string, 0, len(whitelist))
	for _, w := range whitelist {
		if w = fold(w); w != "" {
			folded = append(folded, w)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = patterns
	f.whitelist = folded
	f.loaded = true
}

// IsLoaded returns whether a word list has been loaded
func (f *Filter) IsLoaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded
}

// WordCount returns the number of loaded entries
func (f *Filter) WordCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.patterns)
}

// ContainsBadWords reports whether any word in text matches the list
func (f *Filter) ContainsBadWords(text string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, tok := range tokenize(text) {
		if f.isBad(tok.folded) {
			return true
		}
	}
	return false
}

// Sanitize returns text unchanged when it is clean and ErrInappropriateText
// otherwise.
func (f *Filter) Sanitize(text string) (string, error) {
	if !f.IsLoaded() {
		return "", ErrFilterNotLoaded
	}
	if censored, found := f.censor(text); found {
		f.logger.Info("rejected inappropriate text", slog.String("censored", censored))
		return "", model.ErrInappropriateText
	}
	return text, nil
}

// censor replaces every matching word in text with asterisks and reports
// whether any word matched
func (f *Filter) censor(text string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []rune(text)
	found := false
	for _, tok := range tokenize(text) {
		if f.isBad(tok.folded) {
			found = true
			for i := tok.start; i < tok.end; i++ {
				out[i] = '*'
			}
		}
	}
	return string(out), found
}

// isBad reports whether word contains an entry not covered by a whitelisted
// word. Callers hold the read lock.
func (f *Filter) isBad(word string) bool {
	for _, p := range f.patterns {
		for from := 0; ; {
			idx := strings.Index(word[from:], p.word)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(p.word)
			from = start + 1

			if (start > 0 && !p.prefix) || (end < len(word) && !p.suffix) {
				continue
			}
			if !f.whitelisted(word, start, end) {
				return true
			}
		}
	}
	return false
}

// whitelisted reports whether some whitelist word in word spans [start, end)
func (f *Filter) whitelisted(word string, start, end int) bool {
	for _, w := range f.whitelist {
		for from := 0; ; {
			idx := strings.Index(word[from:], w)
			if idx < 0 {
				break
			}
			ws := from + idx
			if ws <= start && ws+len(w) >= end {
				return true
			}
			from = ws + 1
		}
	}
	return false
}

type token struct {
	folded     string
	start, end int // rune offsets into the original text
}

func tokenize(text string) []token {
	var (
		tokens []token
		start  = -1
		rs     = []rune(text)
	)
	for i, r := range rs {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{folded: fold(string(rs[start:i])), start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{folded: fold(string(rs[start:])), start: start, end: len(rs)})
	}
	return tokens
}

// fold maps text to a plain lower-case latin form for matching
func fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, text)
	if err != nil {
		plain = text
	}
	return cases.Fold().String(strings.TrimSpace(plain))
}

func parseWordList(content string) []string {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
