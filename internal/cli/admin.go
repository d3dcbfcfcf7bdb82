package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (admin accounts only)",
	}

	cmd.AddCommand(newAdminRoomsCmd())
	cmd.AddCommand(newAdminCloseCmd())

	return cmd
}

func newAdminRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List every live room, whatever its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get("/api/admin/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAdminCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <code>",
		Short: "Force-close a room, ejecting its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])

			if err := client.Delete(fmt.Sprintf("/api/admin/rooms/%s", code)); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Room %s closed", code))
			return nil
		},
	}
}
