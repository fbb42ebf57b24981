package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAuthCommand(flags *globalFlags) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect to the ledger with OAuth",
	}
	authCmd.AddCommand(newAuthURLCommand(flags))
	authCmd.AddCommand(newAuthExchangeCommand(flags))
	authCmd.AddCommand(newAuthLogoutCommand(flags))
	return authCmd
}

func newAuthURLCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the URL that grants shekelsync access to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			tokens, err := e.oauth()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tokens.AuthCodeURL(uuid.NewString()))
			return nil
		},
	}
}

func newAuthExchangeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <code>",
		Short: "Trade the authorization code from the redirect for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			tokens, err := e.oauth()
			if err != nil {
				return err
			}
			if err := tokens.Exchange(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connected to the ledger.")
			return nil
		},
	}
}

func newAuthLogoutCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored ledger token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			tokens, err := e.oauth()
			if err != nil {
				return err
			}
			return tokens.Clear(cmd.Context())
		},
	}
}
