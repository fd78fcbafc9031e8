package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/skillhook/internal/matcher"
)

func newMatchCmd(ra *RootArgs) *cobra.Command {
	var event string

	cmd := &cobra.Command{
		Use:   "match [prompt...]",
		Short: "Match a prompt against the merged rules and print the verdict",
		Long: `Evaluates a prompt given as arguments (or read from stdin) and prints the
hook response that "skillhook hook" would emit, indented.

  skillhook match "create a new skill for database migrations"
  echo "drop the users table" | skillhook match`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				prompt = strings.TrimSpace(string(data))
			}

			res, err := ra.newEngine().Evaluate(prompt)
			if err != nil {
				return err
			}

			out := res.Verdict.Output(event)
			if out == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "No skills matched (%d rules loaded)\n", len(res.Rules))
				return nil
			}

			return writeJSON(cmd.OutOrStdout(), out, true)
		},
	}

	cmd.Flags().StringVar(&event, "event", matcher.DefaultHookEvent, "Hook event name to tag the output with")

	return cmd
}
