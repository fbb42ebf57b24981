package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/accounts"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/reconcile"
)

func newReconcileCommand(flags *globalFlags) *cobra.Command {
	var accountRef string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile [files...]",
		Short: "Compare statement balances with the ledger's cleared balances",
		Long: "Reconcile analyzed statements against the account snapshot written by " +
			"'accounts sync'. Each file is matched to its mapped account unless --account is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			svc, err := accounts.Load(e.dataDir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no account snapshot, run 'shekelsync accounts sync' first: %w", err)
				}
				return err
			}

			var forced *model.LedgerAccount
			if accountRef != "" {
				acct, ok := svc.Resolve(accountRef)
				if !ok {
					return fmt.Errorf("unknown account %q", accountRef)
				}
				forced = &acct
			}

			files, _, err := e.statementFiles(args)
			if err != nil {
				return err
			}
			a, err := e.analyzer()
			if err != nil {
				return err
			}

			var records []model.ReconciliationRecord
			var skipped []string
			for _, r := range a.AnalyzeFiles(cmd.Context(), files) {
				if r.Failed() || !r.Recognized() {
					skipped = append(skipped, r.FileName)
					continue
				}
				acct := forced
				if acct == nil {
					found, ok := svc.Get(r.SuggestedAccountID)
					if !ok {
						skipped = append(skipped, r.FileName)
						continue
					}
					acct = &found
				}
				records = append(records, reconcile.BuildRecord(*acct, r))
			}

			for _, name := range skipped {
				e.log.Warn().Str("file", name).Msg("skipped: not recognized or no mapped account")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&accountRef, "account", "", "ledger account ID or name to reconcile every file against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func printRecords(w io.Writer, records []model.ReconciliationRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tACCOUNT\tCLEARED\tFILE BALANCE\tDIFFERENCE\tNOTE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.FileName, r.AccountName, milliText(&r.ClearedBalance), milliText(r.FileBalance), milliText(r.Difference), r.Direction)
	}
	return tw.Flush()
}

func milliText(m *model.Milliunits) string {
	if m == nil {
		return "-"
	}
	return m.MajorUnits().StringFixed(2)
}
