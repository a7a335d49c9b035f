package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/client/theme"
)

func (a *app) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				switch args[0] {
				case "toggle":
					if _, err := sf.Theme.Toggle(ctx); err != nil {
						return err
					}
				default:
					m := theme.Mode(args[0])
					if !m.Valid() {
						return fmt.Errorf("unknown theme %q (want light or dark)", args[0])
					}
					if err := sf.Theme.Set(ctx, m); err != nil {
						return err
					}
				}
			}
			a.out.Info("%s", sf.Theme.Current())
			return nil
		},
	}
}
