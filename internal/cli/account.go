package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/mafiagame-go/internal/model"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountProfileCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var handle, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(model.RegisterEvent{
				Handle:   model.Handle(handle),
				Password: password,
			})
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "", "Player handle (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("handle")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var handle, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate(model.LoginEvent{
				Handle:   model.Handle(handle),
				Password: password,
			})
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "", "Player handle (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("handle")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// authenticate runs the sign-in exchange on a short-lived connection
// and saves the session token for later commands
func authenticate(credentials model.Inbound) error {
	socket, err := DialSocket(cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = socket.Close() }()

	connected, err := socket.Authenticate(credentials)
	if err != nil {
		return err
	}

	if err := cfg.SaveToken(connected.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	out := NewOutput(cfg.Output)
	out.Print(connected)
	return nil
}

func newAccountProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in player's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.IdentityView

			if err := client.Get("/api/profile", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
