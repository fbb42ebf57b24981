package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newMapCommand(flags *globalFlags) *cobra.Command {
	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Manage statement identifier to ledger account mappings",
	}
	mapCmd.AddCommand(newMapSetCommand(flags))
	mapCmd.AddCommand(newMapGetCommand(flags))
	mapCmd.AddCommand(newMapListCommand(flags))
	mapCmd.AddCommand(newMapDeleteCommand(flags))
	return mapCmd
}

func newMapSetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <identifier> <account-id>",
		Short: "Map a statement identifier to a ledger account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			if err := store.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newMapGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <identifier>",
		Short: "Show the ledger account mapped to an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			id, ok, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no mapping for %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newMapListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all identifier mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			mappings, err := store.All(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "IDENTIFIER\tACCOUNT\tUPDATED")
			for _, m := range mappings {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Identifier, m.AccountID, m.UpdatedAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}
}

func newMapDeleteCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <identifier>",
		Short: "Forget the mapping for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			return store.Delete(cmd.Context(), args[0])
		},
	}
}
