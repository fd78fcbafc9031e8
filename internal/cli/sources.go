package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gzhole/skillhook/internal/rules"
)

// sourceInfo is the printable summary of one load result.
type sourceInfo struct {
	Tier   rules.Tier   `json:"tier" yaml:"tier"`
	Rank   int          `json:"rank" yaml:"rank"`
	Path   string       `json:"path" yaml:"path"`
	Status rules.Status `json:"status" yaml:"status"`
	Rules  int          `json:"rules" yaml:"rules"`
	Reason string       `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func summarizeSources(results []rules.LoadResult) []sourceInfo {
	infos := make([]sourceInfo, 0, len(results))
	for _, r := range results {
		info := sourceInfo{
			Tier:   r.Source.Tier,
			Rank:   r.Source.Rank(),
			Path:   r.Source.Path,
			Status: r.Status(),
		}
		if r.Document != nil {
			info.Rules = len(r.Document.Skills)
		}
		if r.Err != nil {
			info.Reason = r.Err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}

func newSourcesCmd(ra *RootArgs) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List discovered rule files in merge order",
		Long: `Lists every skill-rules.json file found across the four tiers, in the
order they are merged, with the number of rules each contributed or the
reason it was skipped.

  skillhook sources`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, results := ra.newEngine().LoadRules()
			infos := summarizeSources(results)

			out := cmd.OutOrStdout()
			err := writeOutput(out, output, infos, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "RANK\tTIER\tSTATUS\tRULES\tPATH")
				for _, info := range infos {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", info.Rank, info.Tier, info.Status, info.Rules, info.Path)
				}
			})
			if err != nil {
				return err
			}

			if output == outputTable || output == "" {
				printSkipReasons(out, infos)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, fmt.Sprintf("Output format, one of: %s", allOutputs))

	return cmd
}

// printSkipReasons follows the table with one line per skipped source.
func printSkipReasons(w io.Writer, infos []sourceInfo) {
	first := true
	for _, info := range infos {
		if info.Reason == "" {
			continue
		}
		if first {
			fmt.Fprintln(w)
			first = false
		}
		fmt.Fprintf(w, "skipped %s: %s\n", info.Path, info.Reason)
	}
}
