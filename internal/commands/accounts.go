package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/accounts"
)

func newAccountsCommand(flags *globalFlags) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Ledger account snapshot",
	}
	accountsCmd.AddCommand(newAccountsSyncCommand(flags))
	accountsCmd.AddCommand(newAccountsListCommand(flags))
	return accountsCmd
}

func newAccountsSyncCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch ledger accounts and balances into the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			client, err := e.ledgerClient()
			if err != nil {
				return err
			}
			accts, err := client.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			if err := accounts.NewService(accts).Save(e.dataDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d accounts\n", len(accts))
			return nil
		},
	}
}

func newAccountsListCommand(flags *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			svc, err := accounts.Load(e.dataDir)
			if err != nil {
				return err
			}
			list := svc.Open()
			if all {
				list = svc.All()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tCLEARED")
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.Type, a.Balance.MajorUnits().StringFixed(2), a.ClearedBalance.MajorUnits().StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include closed accounts")

	return cmd
}
