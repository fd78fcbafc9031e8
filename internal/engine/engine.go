package engine

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/gzhole/skillhook/internal/discovery"
	"github.com/gzhole/skillhook/internal/matcher"
	"github.com/gzhole/skillhook/internal/rules"
)

// Engine runs one discovery, merge and match cycle.
type Engine struct {
	discoverer *discovery.Discoverer
	loader     *rules.Loader
	matcher    *matcher.Matcher
}

// Result carries everything a single run produced, for the hook output and
// for the inspection subcommands.
type Result struct {
	Sources []rules.LoadResult
	Rules   rules.RuleSet
	Verdict matcher.Verdict
}

func New(fs afero.Fs, roots discovery.Roots, opts ...matcher.Option) *Engine {
	return &Engine{
		discoverer: discovery.New(fs, roots),
		loader:     rules.NewLoader(fs),
		matcher:    matcher.New(opts...),
	}
}

// LoadRules discovers and merges the rule set without matching a prompt.
func (e *Engine) LoadRules() (rules.RuleSet, []rules.LoadResult) {
	return e.loader.Merge(e.discoverer.Discover())
}

// Evaluate loads the rule set and matches the prompt against it.
func (e *Engine) Evaluate(prompt string) (*Result, error) {
	rs, results := e.LoadRules()

	verdict, err := e.matcher.Evaluate(rs, prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluate prompt: %w", err)
	}

	return &Result{
		Sources: results,
		Rules:   rs,
		Verdict: verdict,
	}, nil
}
