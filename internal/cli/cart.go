package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/client/cart"
	"storefront/internal/client/model"
)

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
	}
	cmd.AddCommand(
		a.cartListCmd(),
		a.cartAddCmd(),
		a.cartRemoveCmd(),
		a.cartSetCmd(),
		a.cartClearCmd(),
	)
	return cmd
}

func (a *app) cartListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cart lines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if sf.Session.Current() == nil {
				return model.ErrUnauthenticated
			}
			a.printCart(sf.Cart.Lines())
			return nil
		},
	}
}

func (a *app) cartAddCmd() *cobra.Command {
	var qty int64
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product (adds to the existing line when present)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if err := sf.Cart.AddItem(cmd.Context(), model.Product{ID: args[0]}, qty); err != nil {
				return err
			}
			a.printCart(sf.Cart.Lines())
			return nil
		},
	}
	cmd.Flags().Int64Var(&qty, "qty", 1, "quantity to add")
	return cmd
}

func (a *app) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if err := sf.Cart.RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printCart(sf.Cart.Lines())
			return nil
		},
	}
}

func (a *app) cartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if err := sf.Cart.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			a.printCart(sf.Cart.Lines())
			return nil
		},
	}
}

func (a *app) cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if err := sf.Cart.Clear(cmd.Context()); err != nil {
				return err
			}
			a.out.Success("cart cleared")
			return nil
		},
	}
}

func (a *app) printCart(lines []model.CartLine) {
	if len(lines) == 0 {
		a.out.Info("cart is empty")
		return
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.ProductID,
			l.Name,
			strconv.FormatInt(l.Price, 10),
			strconv.FormatInt(l.Quantity, 10),
			strconv.FormatInt(l.Price*l.Quantity, 10),
		})
	}
	a.out.table([]string{"product", "name", "price", "qty", "subtotal"}, rows)
	a.out.Info("total: %d", cart.TotalPrice(lines))
}
