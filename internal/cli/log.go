package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gzhole/skillhook/internal/logger"
)

var ErrAuditDisabled = errors.New("no audit log configured: set --audit-log or audit_log in the config file")

type logArgs struct {
	decision string
	skill    string
	last     int
	summary  bool
}

func newLogCmd(ra *RootArgs) *cobra.Command {
	la := &logArgs{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "View and filter the activation audit log",
		Long: `View the skill activation log written by "skillhook hook" when an audit
log path is configured.

Examples:
  skillhook log                      # Show all entries
  skillhook log --last 20            # Show last 20 entries
  skillhook log --decision block     # Show only blocked prompts
  skillhook log --skill backend-dev  # Show prompts that activated a skill
  skillhook log --summary            # Show activation counts per skill`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ra.Config.AuditLog == "" {
				return ErrAuditDisabled
			}

			events, err := logger.ReadEvents(ra.Config.AuditLog)
			if err != nil {
				return fmt.Errorf("failed to read audit log: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No activations recorded.")
				return nil
			}

			filtered := la.filter(events)
			if la.last > 0 && la.last < len(filtered) {
				filtered = filtered[len(filtered)-la.last:]
			}

			if la.summary {
				printSummary(out, filtered)
				return nil
			}

			printEvents(out, filtered)
			return nil
		},
	}

	cmd.Flags().StringVar(&la.decision, "decision", "", "Filter by decision (allow, block)")
	cmd.Flags().StringVar(&la.skill, "skill", "", "Filter by activated skill name")
	cmd.Flags().IntVar(&la.last, "last", 0, "Show last N entries")
	cmd.Flags().BoolVar(&la.summary, "summary", false, "Show summary statistics")

	return cmd
}

func (la *logArgs) filter(events []logger.AuditEvent) []logger.AuditEvent {
	if la.decision == "" && la.skill == "" {
		return events
	}

	var filtered []logger.AuditEvent
	for _, e := range events {
		if la.decision != "" && !strings.EqualFold(e.Decision, la.decision) {
			continue
		}
		if la.skill != "" && !containsString(e.MatchedRules, la.skill) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func printEvents(w io.Writer, events []logger.AuditEvent) {
	for _, e := range events {
		icon := "✅"
		if e.Decision == "block" {
			icon = "🛑"
		}

		fmt.Fprintf(w, "%s %s %s\n", icon, formatTimestamp(e.Timestamp), e.Prompt)
		fmt.Fprintf(w, "     Skills: %s\n", strings.Join(e.MatchedRules, ", "))
		if len(e.BlockingRules) > 0 {
			fmt.Fprintf(w, "     Blocking: %s\n", strings.Join(e.BlockingRules, ", "))
		}
		if e.SessionID != "" {
			fmt.Fprintf(w, "     Session: %s\n", e.SessionID)
		}
		fmt.Fprintln(w)
	}
}

func printSummary(w io.Writer, events []logger.AuditEvent) {
	counts := map[string]int{}
	blocks := 0
	for _, e := range events {
		if e.Decision == "block" {
			blocks++
		}
		for _, name := range e.MatchedRules {
			counts[name]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintln(w, "═══════════════════════════════════════════")
	fmt.Fprintln(w, "  Skill Activation Summary")
	fmt.Fprintln(w, "═══════════════════════════════════════════")
	fmt.Fprintf(w, "  Prompts:         %d\n", len(events))
	fmt.Fprintf(w, "  Blocked:         %d\n", blocks)
	if len(events) > 0 {
		fmt.Fprintf(w, "  First event:     %s\n", formatTimestamp(events[0].Timestamp))
		fmt.Fprintf(w, "  Last event:      %s\n", formatTimestamp(events[len(events)-1].Timestamp))
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════")

	for _, name := range names {
		fmt.Fprintf(w, "  %-30s %d\n", name, counts[name])
	}
	fmt.Fprintln(w)
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
