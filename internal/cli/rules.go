package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gzhole/skillhook/internal/rules"
)

func newRulesCmd(ra *RootArgs) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the merged skill rules with their source tier",
		Long: `Discovers and merges every skill-rules.json file and prints the result.
The source column shows which tier the winning declaration came from.

  skillhook rules
  skillhook rules --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, _ := ra.newEngine().LoadRules()

			return writeOutput(cmd.OutOrStdout(), output, rs, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "NAME\tTYPE\tENFORCEMENT\tPRIORITY\tSOURCE\tTRIGGERS")
				for _, name := range rs.Names() {
					r := rs[name]
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						name, r.Type, r.Enforcement, r.Priority, r.Source, describeTriggers(r.PromptTriggers))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, fmt.Sprintf("Output format, one of: %s", allOutputs))
	if err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(allOutputs, cobra.ShellCompDirectiveNoFileComp),
	); err != nil {
		panic(err)
	}

	return cmd
}

func describeTriggers(t *rules.PromptTriggers) string {
	if t == nil {
		return "-"
	}
	var parts []string
	if n := len(t.Keywords); n > 0 {
		parts = append(parts, fmt.Sprintf("%d keywords", n))
	}
	if n := len(t.IntentPatterns); n > 0 {
		parts = append(parts, fmt.Sprintf("%d patterns", n))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
