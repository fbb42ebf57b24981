package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/gitops"
	"github.com/shekelsync/shekelsync/internal/importer"
	"github.com/shekelsync/shekelsync/internal/importlog"
	"github.com/shekelsync/shekelsync/internal/ledger"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var accountID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Submit statement transactions to the ledger",
		Long: "Analyze statements and create their transactions in the mapped ledger account. " +
			"With no files, every file in <data_dir>/import is imported and then moved to import/processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()
			return runImport(cmd, e, args, accountID, dryRun)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "ledger account ID for every file (remembered for each file's identifier)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without contacting the ledger")

	return cmd
}

func runImport(cmd *cobra.Command, e *env, args []string, accountID string, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cleared, err := ledger.ParseClearedStatus(e.cfg.Ledger.Cleared)
	if err != nil {
		return err
	}

	files, fromImportDir, err := e.statementFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No statement files to import.")
		return nil
	}

	var client *ledger.Client
	if !dryRun {
		if client, err = e.ledgerClient(); err != nil {
			return err
		}
	}

	a, err := e.analyzer()
	if err != nil {
		return err
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := e.log.With().Str("run", runID).Logger()
	var entries []importlog.Entry
	var runErr error

	for _, r := range a.AnalyzeFiles(ctx, files) {
		switch {
		case r.Failed():
			fmt.Fprintf(out, "%s: skipped: %s\n", r.FileName, r.Error)
			continue
		case !r.Recognized():
			fmt.Fprintf(out, "%s: skipped: unrecognized statement\n", r.FileName)
			continue
		}

		identifier := deref(r.Identifier)
		target := accountID
		if target == "" {
			target = r.SuggestedAccountID
		}
		if target == "" {
			fmt.Fprintf(out, "%s: skipped: no account mapped for %q, use 'shekelsync map set' or --account\n", r.FileName, identifier)
			continue
		}

		payloads := ledger.BuildPayloads(target, r.Transactions, cleared, e.cfg.Ledger.Approved)
		entry := importlog.Entry{
			Timestamp:  time.Now().UTC(),
			RunID:      runID,
			FileName:   r.FileName,
			Vendor:     r.Vendor.Kind,
			Identifier: identifier,
			AccountID:  target,
			DryRun:     dryRun,
		}

		if dryRun {
			entry.Created = len(payloads)
			entries = append(entries, entry)
			outflows := 0
			for _, t := range r.Transactions {
				if t.IsExpense() {
					outflows++
				}
			}
			fmt.Fprintf(out, "%s: would import %d transactions (%d outflows) into %s\n", r.FileName, len(payloads), outflows, target)
			continue
		}

		res, err := client.CreateTransactions(ctx, payloads)
		entry.Created = len(res.TransactionIDs)
		entry.Duplicates = len(res.DuplicateImportIDs)
		if entry.Created > 0 || entry.Duplicates > 0 {
			entries = append(entries, entry)
		}
		if err != nil {
			runErr = fmt.Errorf("importing %s: %w", r.FileName, err)
			break
		}
		fmt.Fprintf(out, "%s: imported %d transactions into %s (%d duplicates)\n",
			r.FileName, entry.Created, target, entry.Duplicates)

		if accountID != "" && identifier != "" {
			if err := store.Set(ctx, identifier, accountID); err != nil {
				log.Warn().Err(err).Str("identifier", identifier).Msg("remembering account mapping")
			}
		}
		if fromImportDir {
			if err := importer.MarkProcessed(e.dataDir, r.FileName); err != nil {
				log.Warn().Err(err).Str("file", r.FileName).Msg("moving imported file")
			}
		}
	}

	if len(entries) > 0 {
		if err := importlog.Append(e.dataDir, entries); err != nil {
			return errors.Join(runErr, err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if !dryRun && len(entries) > 0 && e.cfg.Git.AutoCommit && gitops.IsRepo(e.dataDir) {
		msg := fmt.Sprintf("import: %d files (run %s)", len(entries), runID)
		hash, err := gitops.CommitAll(e.dataDir, msg, e.cfg.Git.AuthorName, e.cfg.Git.AuthorEmail)
		switch {
		case errors.Is(err, gitops.ErrNothingToCommit):
		case err != nil:
			return fmt.Errorf("committing import: %w", err)
		default:
			log.Info().Str("commit", hash).Msg("import committed")
		}
	}
	return nil
}
