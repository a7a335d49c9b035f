package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) dataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Analytics records and the offline queue",
	}
	cmd.AddCommand(a.dataRecordCmd(), a.dataFlushCmd(), a.dataWatchCmd(), a.dataExportCmd())
	return cmd
}

func (a *app) dataRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <type> [json-payload]",
		Short: "Record an entry (queued when the API cannot be reached)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload any = map[string]any{}
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("payload is not valid JSON")
				}
				payload = json.RawMessage(args[1])
			}

			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			if err := sf.Data.Record(cmd.Context(), args[0], payload); err != nil {
				return err
			}
			if n := sf.Data.Pending(); n > 0 {
				a.out.Warning("queued; %d record(s) waiting for delivery", n)
				return nil
			}
			a.out.Success("recorded %s", args[0])
			return nil
		},
	}
}

func (a *app) dataFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Deliver queued records in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}
			if !a.api.Online(ctx) {
				return fmt.Errorf("api at %s is unreachable; %d record(s) kept", a.cfg.API, sf.Data.Pending())
			}
			n, err := sf.Data.Flush(ctx)
			if err != nil {
				return fmt.Errorf("delivered %d, %d left: %w", n, sf.Data.Pending(), err)
			}
			a.out.Success("delivered %d record(s)", n)
			return nil
		},
	}
}

func (a *app) dataWatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep delivering queued records while the API is reachable (until interrupted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			ctx := cmd.Context()
			sf, err := a.storefront(ctx)
			if err != nil {
				return err
			}

			a.out.Info("watching %s every %s; %d record(s) pending", a.cfg.API, interval, sf.Data.Pending())
			sf.Data.Watch(ctx, a.api.Online, interval)
			<-ctx.Done()

			a.out.Info("stopped; %d record(s) pending", sf.Data.Pending())
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "connectivity check interval")
	return cmd
}

func (a *app) dataExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the locally queued records as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := a.storefront(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := sf.Data.ExportLocal(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Info("%s", raw)
			return nil
		},
	}
}
