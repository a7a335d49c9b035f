package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) wishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show or change the wishlist (kept on this machine only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			items := sf.Wishlist.Items()
			if len(items) == 0 {
				a.out.Info("wishlist is empty")
				return nil
			}
			for _, id := range items {
				a.out.Info("%s", id)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "toggle <product-id>",
			Short: "Add the product, or remove it when already present",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sf, err := a.storefront(cmd.Context())
				if err != nil {
					return err
				}
				added, err := sf.Wishlist.Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if added {
					a.out.Success("added %s", args[0])
				} else {
					a.out.Success("removed %s", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove <product-id>",
			Aliases: []string{"rm"},
			Short:   "Remove a product",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sf, err := a.storefront(cmd.Context())
				if err != nil {
					return err
				}
				return sf.Wishlist.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the wishlist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				sf, err := a.storefront(cmd.Context())
				if err != nil {
					return err
				}
				return sf.Wishlist.Clear(cmd.Context())
			},
		},
	)
	return cmd
}
