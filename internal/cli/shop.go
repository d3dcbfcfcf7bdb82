package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/mafiagame-go/internal/model"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Cosmetics shop commands",
	}

	cmd.AddCommand(newShopListCmd())
	cmd.AddCommand(newShopBuyCmd())

	return cmd
}

func newShopListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cosmetics catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Catalog

			if err := client.Get("/api/shop", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newShopBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <cosmetic-id>",
		Short: "Buy a cosmetic with wallet coins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"cosmeticId": args[0]}
			var result model.IdentityView

			if err := client.Post("/api/profile/purchase", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
