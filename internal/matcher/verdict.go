package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gzhole/skillhook/internal/rules"
)

const (
	DecisionBlock = "block"

	// DefaultHookEvent tags the output when the host did not name its event.
	DefaultHookEvent = "UserPromptSubmit"

	banner        = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	closingAction = "ACTION: Use Skill tool BEFORE responding"
)

var ErrUnknownPriority = errors.New("unknown priority")

// Verdict groups matches by the matched rule's priority.
type Verdict struct {
	Critical []Match
	High     []Match
	Medium   []Match
	Low      []Match

	ShouldBlock   bool
	BlockingRules []string
}

// HookOutput is the JSON document written to the host on a match.
type HookOutput struct {
	Decision           string             `json:"decision,omitempty"`
	Reason             string             `json:"reason,omitempty"`
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// NewVerdict buckets matches and decides whether the caller must block.
// A block needs a critical match whose enforcement is block.
func NewVerdict(matches []Match) (Verdict, error) {
	var v Verdict

	for _, m := range matches {
		switch m.Rule.Priority {
		case rules.PriorityCritical:
			v.Critical = append(v.Critical, m)
			if m.Rule.Enforcement == rules.EnforcementBlock {
				v.BlockingRules = append(v.BlockingRules, m.Name)
			}
		case rules.PriorityHigh:
			v.High = append(v.High, m)
		case rules.PriorityMedium:
			v.Medium = append(v.Medium, m)
		case rules.PriorityLow:
			v.Low = append(v.Low, m)
		default:
			return Verdict{}, fmt.Errorf("skill %q: %w %q", m.Name, ErrUnknownPriority, m.Rule.Priority)
		}
	}

	sort.Strings(v.BlockingRules)
	v.ShouldBlock = len(v.BlockingRules) > 0

	return v, nil
}

// Evaluate matches the prompt against the rule set and builds the verdict.
func (m *Matcher) Evaluate(rs rules.RuleSet, prompt string) (Verdict, error) {
	return NewVerdict(m.Match(rs, prompt))
}

func (v Verdict) Matched() bool {
	return v.Count() > 0
}

func (v Verdict) Count() int {
	return len(v.Critical) + len(v.High) + len(v.Medium) + len(v.Low)
}

// Bucket returns the matches for a priority.
func (v Verdict) Bucket(p rules.Priority) []Match {
	switch p {
	case rules.PriorityCritical:
		return v.Critical
	case rules.PriorityHigh:
		return v.High
	case rules.PriorityMedium:
		return v.Medium
	case rules.PriorityLow:
		return v.Low
	}
	return nil
}

// Names returns every matched rule name, most urgent bucket first.
func (v Verdict) Names() []string {
	var names []string
	for _, p := range rules.Priorities {
		for _, m := range v.Bucket(p) {
			names = append(names, m.Name)
		}
	}
	return names
}

func bucketHeader(p rules.Priority) string {
	switch p {
	case rules.PriorityCritical:
		return "⚠️ CRITICAL SKILLS (REQUIRED):"
	case rules.PriorityHigh:
		return "📚 RECOMMENDED SKILLS:"
	case rules.PriorityMedium:
		return "💡 SUGGESTED SKILLS:"
	case rules.PriorityLow:
		return "📌 OPTIONAL SKILLS:"
	}
	return ""
}

// Context renders the additionalContext block. Empty buckets are omitted.
func (v Verdict) Context() string {
	var sb strings.Builder

	sb.WriteString(banner + "\n")
	sb.WriteString("🎯 SKILL ACTIVATION CHECK\n")
	sb.WriteString(banner + "\n\n")

	for _, p := range rules.Priorities {
		bucket := v.Bucket(p)
		if len(bucket) == 0 {
			continue
		}
		sb.WriteString(bucketHeader(p) + "\n")
		for _, m := range bucket {
			fmt.Fprintf(&sb, "  → %s\n", m.Name)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(closingAction + "\n")
	sb.WriteString(banner + "\n")

	return sb.String()
}

// Reason explains a block decision. It is empty when nothing blocks.
func (v Verdict) Reason() string {
	if !v.ShouldBlock {
		return ""
	}
	return fmt.Sprintf(
		"Critical skills must be invoked before continuing: %s. Use the Skill tool to load them first.",
		strings.Join(v.BlockingRules, ", "),
	)
}

// Output builds the hook response, or nil when nothing matched.
func (v Verdict) Output(event string) *HookOutput {
	if !v.Matched() {
		return nil
	}
	if event == "" {
		event = DefaultHookEvent
	}

	out := &HookOutput{
		HookSpecificOutput: HookSpecificOutput{
			HookEventName:     event,
			AdditionalContext: v.Context(),
		},
	}
	if v.ShouldBlock {
		out.Decision = DecisionBlock
		out.Reason = v.Reason()
	}
	return out
}
