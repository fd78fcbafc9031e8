package matcher

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"

	"github.com/gzhole/skillhook/internal/rules"
)

// DefaultRegexTimeout bounds a single intent pattern evaluation.
const DefaultRegexTimeout = 100 * time.Millisecond

type Category string

const (
	CategoryKeyword Category = "keyword"
	CategoryIntent  Category = "intent"
)

type Match struct {
	Name     string
	Category Category
	Rule     rules.Rule
}

type Option func(*Matcher)

// WithRegexTimeout sets the per-pattern match timeout. Non-positive values
// keep the default.
func WithRegexTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.regexTimeout = d
		}
	}
}

// Matcher evaluates prompt triggers. Intent patterns are ECMAScript-flavoured
// so rule files written for the JavaScript hooks keep working.
type Matcher struct {
	regexTimeout time.Duration
	patterns     map[string]*regexp2.Regexp
}

func New(opts ...Option) *Matcher {
	m := &Matcher{
		regexTimeout: DefaultRegexTimeout,
		patterns:     make(map[string]*regexp2.Regexp),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns at most one match per rule, ordered by rule name. Keywords
// are checked before intent patterns; a keyword hit skips the patterns.
func (m *Matcher) Match(rs rules.RuleSet, prompt string) []Match {
	folded := cases.Fold().String(prompt)

	var matches []Match
	for _, name := range rs.Names() {
		rule := rs[name]
		triggers := rule.PromptTriggers
		if triggers == nil {
			continue
		}

		if matchKeywords(triggers.Keywords, folded) {
			matches = append(matches, Match{Name: name, Category: CategoryKeyword, Rule: rule})
			continue
		}

		if m.matchIntents(name, triggers.IntentPatterns, prompt) {
			matches = append(matches, Match{Name: name, Category: CategoryIntent, Rule: rule})
		}
	}

	return matches
}

func matchKeywords(keywords []string, folded string) bool {
	fold := cases.Fold()
	for _, kw := range keywords {
		if strings.Contains(folded, fold.String(kw)) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchIntents(name string, patterns []string, prompt string) bool {
	for _, pattern := range patterns {
		re, err := m.compile(pattern)
		if err != nil {
			slog.Warn("invalid intent pattern",
				slog.String("skill", name),
				slog.String("pattern", pattern),
				slog.Any("error", err),
			)
			continue
		}

		ok, err := re.MatchString(prompt)
		if err != nil {
			slog.Warn("intent pattern failed",
				slog.String("skill", name),
				slog.String("pattern", pattern),
				slog.Any("error", err),
			)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func (m *Matcher) compile(pattern string) (*regexp2.Regexp, error) {
	if re, ok := m.patterns[pattern]; ok {
		return re, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = m.regexTimeout

	m.patterns[pattern] = re
	return re, nil
}
