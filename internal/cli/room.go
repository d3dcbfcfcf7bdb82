package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomQRCmd())

	return cmd
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms waiting for players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get("/api/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomQRCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Download a room's join QR code as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])

			data, err := client.GetRaw(fmt.Sprintf("/api/rooms/%s/qr", code))
			if err != nil {
				return err
			}

			if outFile == "" {
				outFile = code + ".png"
			}
			if err := os.WriteFile(outFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("QR code written to %s", outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Output file (default: <code>.png)")

	return cmd
}
