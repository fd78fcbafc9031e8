package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/afero"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
)

// LoadResult is the outcome of loading one source: either a parsed Document,
// or the reason the source was skipped.
type LoadResult struct {
	Source   Source
	Document *Document
	Err      error
}

func (r LoadResult) Status() Status {
	if r.Err != nil || r.Document == nil {
		return StatusSkipped
	}
	return StatusOK
}

// Loader reads rule documents through an injected filesystem.
type Loader struct {
	fs        afero.Fs
	validator *Validator
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs, validator: DocumentValidator}
}

// Load reads and parses a single source. It never returns an error directly;
// failures are carried in the result.
func (l *Loader) Load(src Source) LoadResult {
	data, err := afero.ReadFile(l.fs, src.Path)
	if err != nil {
		return LoadResult{Source: src, Err: fmt.Errorf("read %s: %w", src.Path, err)}
	}

	doc, err := l.Parse(data)
	if err != nil {
		return LoadResult{Source: src, Err: fmt.Errorf("parse %s: %w", src.Path, err)}
	}

	return LoadResult{Source: src, Document: doc}
}

// Parse validates and decodes a rule document.
func (l *Loader) Parse(data []byte) (*Document, error) {
	if err := l.validator.Validate(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	return &doc, nil
}

// Merge loads every source in ascending rank order (stable for equal ranks)
// and folds their rules into one RuleSet. A same-named rule from a later
// source replaces the earlier one entirely. Sources that fail to load are
// skipped and reported in the returned results, in merge order.
func (l *Loader) Merge(sources []Source) (RuleSet, []LoadResult) {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank() < ordered[j].Rank()
	})

	merged := make(RuleSet)
	results := make([]LoadResult, 0, len(ordered))

	for _, src := range ordered {
		res := l.Load(src)
		results = append(results, res)

		if res.Status() == StatusSkipped {
			slog.Debug("skipping rule source",
				slog.String("path", src.Path),
				slog.String("tier", string(src.Tier)),
				slog.Any("error", res.Err),
			)
			continue
		}

		for name, rule := range res.Document.Skills {
			rule.Source = src.Tier
			merged[name] = rule
		}

		slog.Debug("merged rule source",
			slog.String("path", src.Path),
			slog.String("tier", string(src.Tier)),
			slog.Int("rules", len(res.Document.Skills)),
		)
	}

	return merged, results
}
