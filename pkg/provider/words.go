package provider

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/layout"
)

var defaultStopWords = []string{
	"a", "about", "after", "all", "also", "an", "and", "any", "are", "as", "at",
	"be", "been", "but", "by", "can", "could", "did", "do", "does", "for", "from",
	"had", "has", "have", "he", "her", "his", "how", "i", "if", "in", "into", "is",
	"it", "its", "just", "like", "me", "more", "my", "no", "not", "now", "of", "on",
	"one", "or", "our", "out", "she", "so", "some", "than", "that", "the", "their",
	"them", "then", "there", "these", "they", "this", "to", "too", "up", "us",
	"very", "was", "we", "were", "what", "when", "which", "who", "will", "with",
	"would", "you", "your", "rt", "via", "amp",
}

// WordFrequency counts words and hashtags over the most recent tweets.
type WordFrequency struct {
	mu        sync.RWMutex
	window    int
	minLength int
	stop      map[string]struct{}

	recent []tweetTokens // oldest first
	seen   map[string]struct{}
	counts map[string]int
}

type tweetTokens struct {
	id     string
	tokens []string
}

// WordOptions configures a WordFrequency.
type WordOptions struct {
	// Window is the number of recent tweets counted (default 200).
	Window int
	// MinLength drops shorter tokens (default 3 runes).
	MinLength int
	// StopWords are ignored in addition to the built-in list.
	StopWords []string
}

// NewWordFrequency creates an empty counter.
func NewWordFrequency(opts WordOptions) *WordFrequency {
	if opts.Window <= 0 {
		opts.Window = 200
	}
	if opts.MinLength <= 0 {
		opts.MinLength = 3
	}
	stop := make(map[string]struct{}, len(defaultStopWords)+len(opts.StopWords))
	for _, w := range slices.Concat(defaultStopWords, opts.StopWords) {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &WordFrequency{
		window:    opts.Window,
		minLength: opts.MinLength,
		stop:      stop,
		seen:      make(map[string]struct{}),
		counts:    make(map[string]int),
	}
}

func newWordFrequency(cfg Config) (Provider, error) {
	var opts WordOptions
	var err error
	if opts.Window, err = cfg.Int("window", 200); err != nil {
		return nil, err
	}
	if opts.MinLength, err = cfg.Int("min_length", 3); err != nil {
		return nil, err
	}
	if opts.StopWords, err = cfg.Strings("stop_words"); err != nil {
		return nil, err
	}
	return NewWordFrequency(opts), nil
}

// Kind returns KindWords.
func (f *WordFrequency) Kind() Kind { return KindWords }

// OnTweet counts the tokens of t.
func (f *WordFrequency) OnTweet(t content.Tweet) {
	tokens := f.tokenize(t.Text)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(t.ID, tokens)
}

// OnHistory counts the backlog.
func (f *WordFrequency) OnHistory(tweets []content.Tweet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tweets {
		f.add(t.ID, f.tokenize(t.Text))
	}
}

func (f *WordFrequency) add(id string, tokens []string) {
	if _, dup := f.seen[id]; dup {
		return
	}
	f.seen[id] = struct{}{}
	f.recent = append(f.recent, tweetTokens{id: id, tokens: tokens})
	for _, tok := range tokens {
		f.counts[tok]++
	}
	for len(f.recent) > f.window {
		old := f.recent[0]
		f.recent = f.recent[1:]
		delete(f.seen, old.id)
		for _, tok := range old.tokens {
			if f.counts[tok]--; f.counts[tok] <= 0 {
				delete(f.counts, tok)
			}
		}
	}
}

// tokenize splits text into lower-cased words and hashtags, dropping URLs,
// mentions, stop words and short tokens.
func (f *WordFrequency) tokenize(text string) []string {
	var out []string
	for _, field := range strings.Fields(text) {
		lower := strings.ToLower(field)
		if strings.HasPrefix(lower, "@") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			continue
		}
		tok := strings.TrimFunc(lower, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '#'
		})
		tok = strings.TrimRight(tok, "#")
		if utf8.RuneCountInString(strings.TrimPrefix(tok, "#")) < f.minLength {
			continue
		}
		if _, stop := f.stop[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Top returns the n most frequent tokens weighted by count, heaviest first,
// ties broken by text. n <= 0 returns all.
func (f *WordFrequency) Top(n int) []layout.Word {
	f.mu.RLock()
	words := make([]layout.Word, 0, len(f.counts))
	for text, c := range f.counts {
		words = append(words, layout.Word{Text: text, Weight: float64(c)})
	}
	f.mu.RUnlock()

	slices.SortFunc(words, func(a, b layout.Word) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

var (
	_ NewTweetAware = (*WordFrequency)(nil)
	_ HistoryAware  = (*WordFrequency)(nil)
)
