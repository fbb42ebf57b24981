package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/model"
)

func newAnalyzeCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Detect the vendor of statement files and extract their transactions",
		Long:  "Analyze the given statement files, or every file in <data_dir>/import when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			files, _, err := e.statementFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No statement files to analyze.")
				return nil
			}

			a, err := e.analyzer()
			if err != nil {
				return err
			}
			results := a.AnalyzeFiles(cmd.Context(), files)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return printAnalyses(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print full results as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

func printAnalyses(w io.Writer, results []model.FileAnalysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tVENDOR\tIDENTIFIER\tTRANSACTIONS\tBALANCE\tACCOUNT")
	for _, r := range results {
		switch {
		case r.Failed():
			fmt.Fprintf(tw, "%s\terror: %s\t\t\t\t\n", r.FileName, r.Error)
		case !r.Recognized():
			fmt.Fprintf(tw, "%s\tunrecognized\t\t\t\t\n", r.FileName)
		default:
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				r.FileName, r.Vendor.Kind, deref(r.Identifier), len(r.Transactions), balanceText(r), r.SuggestedAccountID)
		}
	}
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func balanceText(r model.FileAnalysis) string {
	if r.FinalBalance == nil {
		return "-"
	}
	return r.FinalBalance.StringFixed(2)
}
