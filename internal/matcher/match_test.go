package matcher

import (
	"testing"
	"time"

	"github.com/gzhole/skillhook/internal/rules"
)

func rule(priority rules.Priority, enforcement rules.Enforcement, keywords, intents []string) rules.Rule {
	r := rules.Rule{
		Type:        rules.TypeDomain,
		Enforcement: enforcement,
		Priority:    priority,
	}
	if keywords != nil || intents != nil {
		r.PromptTriggers = &rules.PromptTriggers{Keywords: keywords, IntentPatterns: intents}
	}
	return r
}

func TestMatch_KeywordCaseInsensitive(t *testing.T) {
	rs := rules.RuleSet{
		"backend": rule(rules.PriorityHigh, rules.EnforcementSuggest, []string{"Controller"}, nil),
	}

	tests := []string{
		"add a new controller",
		"ADD A NEW CONTROLLER",
		"fix the UserController route",
	}

	m := New()
	for _, prompt := range tests {
		matches := m.Match(rs, prompt)
		if len(matches) != 1 {
			t.Errorf("Match(%q): expected 1 match, got %d", prompt, len(matches))
			continue
		}
		if matches[0].Category != CategoryKeyword {
			t.Errorf("Match(%q): expected keyword category, got %q", prompt, matches[0].Category)
		}
	}
}

func TestMatch_IntentCaseInsensitive(t *testing.T) {
	rs := rules.RuleSet{
		"db": rule(rules.PriorityMedium, rules.EnforcementSuggest, nil, []string{`(create|add).*?migration`}),
	}

	for _, prompt := range []string{"please create a migration", "ADD A MIGRATION NOW"} {
		matches := New().Match(rs, prompt)
		if len(matches) != 1 || matches[0].Category != CategoryIntent {
			t.Errorf("Match(%q): expected one intent match, got %+v", prompt, matches)
		}
	}
}

func TestMatch_KeywordWinsOverIntent(t *testing.T) {
	rs := rules.RuleSet{
		"both": rule(rules.PriorityLow, rules.EnforcementWarn, []string{"deploy"}, []string{`deploy.*prod`}),
	}

	matches := New().Match(rs, "deploy to prod")
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match per rule, got %d", len(matches))
	}
	if matches[0].Category != CategoryKeyword {
		t.Errorf("expected keyword category, got %q", matches[0].Category)
	}
}

func TestMatch_IntentWhenKeywordsMiss(t *testing.T) {
	rs := rules.RuleSet{
		"both": rule(rules.PriorityLow, rules.EnforcementWarn, []string{"kubectl"}, []string{`roll\s*back`}),
	}

	matches := New().Match(rs, "roll back the release")
	if len(matches) != 1 || matches[0].Category != CategoryIntent {
		t.Fatalf("expected one intent match, got %+v", matches)
	}
}

func TestMatch_NoTriggersNeverMatches(t *testing.T) {
	rs := rules.RuleSet{
		"bare":  rule(rules.PriorityCritical, rules.EnforcementBlock, nil, nil),
		"empty": {Type: rules.TypeDomain, Enforcement: rules.EnforcementBlock, Priority: rules.PriorityCritical, PromptTriggers: &rules.PromptTriggers{}},
	}

	if matches := New().Match(rs, "anything at all"); len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
}

func TestMatch_BlankKeywordsAreSubstrings(t *testing.T) {
	rs := rules.RuleSet{
		"empty": rule(rules.PriorityHigh, rules.EnforcementSuggest, []string{""}, nil),
		"space": rule(rules.PriorityLow, rules.EnforcementSuggest, []string{" "}, nil),
	}

	tests := []struct {
		prompt string
		want   []string
	}{
		{"anything", []string{"empty"}},
		{"two words", []string{"empty", "space"}},
		{"", []string{"empty"}},
	}

	for _, tt := range tests {
		matches := New().Match(rs, tt.prompt)
		if len(matches) != len(tt.want) {
			t.Errorf("prompt %q: expected %v, got %+v", tt.prompt, tt.want, matches)
			continue
		}
		for i, m := range matches {
			if m.Name != tt.want[i] || m.Category != CategoryKeyword {
				t.Errorf("prompt %q: match %d = %s/%s, want %s/keyword", tt.prompt, i, m.Name, m.Category, tt.want[i])
			}
		}
	}
}

func TestMatch_InvalidPatternSkipped(t *testing.T) {
	rs := rules.RuleSet{
		"broken": rule(rules.PriorityHigh, rules.EnforcementSuggest, nil, []string{`(unclosed`, `valid`}),
	}

	matches := New().Match(rs, "this is valid")
	if len(matches) != 1 {
		t.Fatalf("expected the valid pattern to still match, got %+v", matches)
	}
}

func TestMatch_ECMAScriptLookahead(t *testing.T) {
	rs := rules.RuleSet{
		"look": rule(rules.PriorityHigh, rules.EnforcementSuggest, nil, []string{`test(?!ing)`}),
	}

	if matches := New().Match(rs, "write a test"); len(matches) != 1 {
		t.Errorf("expected lookahead pattern to match, got %+v", matches)
	}
	if matches := New().Match(rs, "testing things"); len(matches) != 0 {
		t.Errorf("expected lookahead pattern to reject, got %+v", matches)
	}
}

func TestMatch_OrderedByName(t *testing.T) {
	rs := rules.RuleSet{
		"zeta":  rule(rules.PriorityLow, rules.EnforcementWarn, []string{"go"}, nil),
		"alpha": rule(rules.PriorityLow, rules.EnforcementWarn, []string{"go"}, nil),
	}

	matches := New().Match(rs, "go")
	if len(matches) != 2 || matches[0].Name != "alpha" || matches[1].Name != "zeta" {
		t.Errorf("expected alpha then zeta, got %+v", matches)
	}
}

func TestWithRegexTimeout(t *testing.T) {
	m := New(WithRegexTimeout(5 * time.Millisecond))
	if m.regexTimeout != 5*time.Millisecond {
		t.Errorf("expected 5ms timeout, got %v", m.regexTimeout)
	}

	m = New(WithRegexTimeout(0))
	if m.regexTimeout != DefaultRegexTimeout {
		t.Errorf("expected default timeout, got %v", m.regexTimeout)
	}
}
