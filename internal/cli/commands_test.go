package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gzhole/skillhook/internal/rules"
)

func TestMatch_FromArgs(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {"frontend": {"type": "domain", "enforcement": "suggest", "priority": "medium", "promptTriggers": {"keywords": ["react"]}}}}`)

	stdout, _, err := env.run(t, "", "match", "build", "a", "React", "component")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := decodeOutput(t, stdout)
	if !strings.Contains(out.HookSpecificOutput.AdditionalContext, "SUGGESTED SKILLS:\n  → frontend") {
		t.Errorf("expected frontend under SUGGESTED SKILLS, got:\n%s", out.HookSpecificOutput.AdditionalContext)
	}
}

func TestMatch_NoMatchReportsOnStderr(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, err := env.run(t, "hello there", "match")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "No skills matched") {
		t.Errorf("expected a note on stderr, got %q", stderr)
	}
}

func TestRules_JSONShowsProvenance(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {"a": {"type": "domain", "enforcement": "suggest", "priority": "low", "source": "project"}}}`)
	env.write(t, projectRules, `{"skills": {"b": {"type": "guardrail", "enforcement": "block", "priority": "critical"}}}`)

	stdout, _, err := env.run(t, "", "rules", "--output", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rs rules.RuleSet
	if err := json.Unmarshal([]byte(stdout), &rs); err != nil {
		t.Fatalf("rules output is not JSON: %v\n%s", err, stdout)
	}
	if rs["a"].Source != rules.TierGlobal {
		t.Errorf("expected a from global, got %q", rs["a"].Source)
	}
	if rs["b"].Source != rules.TierProject {
		t.Errorf("expected b from project, got %q", rs["b"].Source)
	}
}

func TestRules_TableAndYAML(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {"a": {"type": "domain", "enforcement": "suggest", "priority": "low", "promptTriggers": {"keywords": ["x", "y"], "intentPatterns": ["z"]}}}}`)

	stdout, _, err := env.run(t, "", "rules")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "2 keywords, 1 patterns") {
		t.Errorf("expected trigger summary in table, got:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "", "rules", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "source: global") {
		t.Errorf("expected YAML with source, got:\n%s", stdout)
	}

	if _, _, err := env.run(t, "", "rules", "-o", "xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestSources_ReportsSkipped(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {"a": {"type": "domain", "enforcement": "suggest", "priority": "low"}}}`)
	env.write(t, projectRules, `{"skills": {"b": {"type": "domain", "enforcement": "suggest", "priority": "urgent"}}}`)

	stdout, _, err := env.run(t, "", "sources", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var infos []sourceInfo
	if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
		t.Fatalf("sources output is not JSON: %v\n%s", err, stdout)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(infos))
	}
	if infos[0].Tier != rules.TierGlobal || infos[0].Status != rules.StatusOK || infos[0].Rules != 1 {
		t.Errorf("unexpected global source: %+v", infos[0])
	}
	if infos[1].Tier != rules.TierProject || infos[1].Status != rules.StatusSkipped || infos[1].Reason == "" {
		t.Errorf("unexpected project source: %+v", infos[1])
	}
}

func TestSources_TableThenSkipNotes(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {"a": {"type": "domain", "enforcement": "suggest", "priority": "low"}}}`)
	env.write(t, projectRules, `{"skills": {"b": {"type": "domain", "enforcement": "suggest", "priority": "urgent"}}}`)

	stdout, _, err := env.run(t, "", "sources")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) < 5 {
		t.Fatalf("expected header, two rows, a blank line and a note, got:\n%s", stdout)
	}
	if !strings.HasPrefix(lines[0], "RANK") {
		t.Errorf("expected header first, got %q", lines[0])
	}
	pathCol := strings.Index(lines[0], "PATH")
	for _, row := range lines[1:3] {
		if pathCol < 0 || len(row) <= pathCol || row[pathCol] != '/' {
			t.Errorf("row %q not aligned with PATH column %d", row, pathCol)
		}
	}
	if lines[3] != "" {
		t.Errorf("expected blank separator, got %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "skipped "+projectRules+": ") {
		t.Errorf("unexpected skip note %q", lines[4])
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "skillhook "+Version) {
		t.Errorf("unexpected version output: %q", stdout)
	}
}

func TestLog_RequiresAuditPath(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run(t, "", "log"); !errors.Is(err, ErrAuditDisabled) {
		t.Errorf("expected ErrAuditDisabled, got %v", err)
	}
}

func TestLog_FiltersAndSummary(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, globalRules, `{"skills": {
  "deploy": {"type": "guardrail", "enforcement": "block", "priority": "critical", "promptTriggers": {"keywords": ["deploy"]}},
  "docs": {"type": "domain", "enforcement": "suggest", "priority": "low", "promptTriggers": {"keywords": ["readme"]}}
}}`)
	auditPath := filepath.Join(t.TempDir(), "activations.jsonl")

	for _, prompt := range []string{"deploy now", "update the readme", "deploy the readme"} {
		stdin := fmt.Sprintf(`{"prompt": %q}`, prompt)
		if _, _, err := env.run(t, stdin, "hook", "--audit-log", auditPath); err != nil {
			t.Fatalf("hook failed: %v", err)
		}
	}

	stdout, _, err := env.run(t, "", "log", "--audit-log", auditPath, "--decision", "block")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stdout, "update the readme") {
		t.Errorf("allow entries should be filtered out:\n%s", stdout)
	}
	if strings.Count(stdout, "🛑") != 2 {
		t.Errorf("expected 2 blocked entries:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "", "log", "--audit-log", auditPath, "--skill", "docs", "--last", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "deploy the readme") || strings.Contains(stdout, "update the readme") {
		t.Errorf("expected only the last docs activation:\n%s", stdout)
	}

	stdout, _, err = env.run(t, "", "log", "--audit-log", auditPath, "--summary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Prompts:         3") || !strings.Contains(stdout, "Blocked:         2") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}
}
