package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"storefront/internal/client/model"
)

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.storefront(cmd.Context()); err != nil {
				return err
			}
			id, err := a.api.Register(cmd.Context(), name, email, password)
			if errors.Is(err, model.ErrDuplicateRegistration) {
				return fmt.Errorf("%s is already registered", email)
			}
			if err != nil {
				return err
			}
			a.out.Success("registered %s (%s)", id.Email, id.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and load the account's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}
			id, err := a.api.Login(ctx, email, password)
			if errors.Is(err, model.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}
			if err := sf.Login(ctx, id); err != nil {
				return err
			}
			a.out.Success("logged in as %s", id.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local identity, cart cache and wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}
			id := sf.Session.Current()
			if id == nil {
				a.out.Info("not logged in")
				return nil
			}

			// サーバー側セッションの失効はベストエフォート
			if err := a.api.Logout(ctx, *id); err != nil {
				a.out.Warning("server logout failed: %v", err)
			}
			if err := sf.Logout(ctx); err != nil {
				return err
			}
			a.out.Success("logged out")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the current identity, server session and cart",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}
			id := sf.Session.Current()
			if id == nil {
				a.out.Info("anonymous")
				a.out.Info("pending records: %d", sf.Data.Pending())
				return nil
			}

			var sess model.SessionRecord
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				s, err := a.api.Session(gctx, *id)
				if err != nil {
					return fmt.Errorf("session: %w", err)
				}
				sess = s
				return nil
			})
			g.Go(func() error {
				return sf.Cart.Refresh(gctx)
			})
			if err := g.Wait(); err != nil {
				if errors.Is(err, model.ErrUnauthorized) {
					a.out.Warning("server session is no longer valid; log in again")
				}
				return err
			}

			a.out.Header(fmt.Sprintf("%s <%s>", id.Name, id.Email))
			a.out.Info("user id:         %s", id.ID)
			a.out.Info("session expires: %s", sess.ExpiresAt.Local().Format(time.RFC3339))
			a.out.Info("cart:            %d lines, total %d", len(sf.Cart.Lines()), sf.Cart.TotalPrice())
			a.out.Info("wishlist:        %d items", len(sf.Wishlist.Items()))
			a.out.Info("pending records: %d", sf.Data.Pending())
			return nil
		},
	}
}
