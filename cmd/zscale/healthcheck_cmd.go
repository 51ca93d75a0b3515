package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

func newHealthcheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the Zephyr Scale API with the configured token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if _, err := a.prepare(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := a.openGateway(ctx)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = rt.Close(shutdownCtx)
			}()
			o := format.Run(ctx, string(client.OpHealthcheck),
				func() validate.Result[struct{}] { return validate.Valid(struct{}{}) },
				func(ctx context.Context, _ struct{}) (api.Health, error) {
					return rt.gateway.Healthcheck(ctx)
				},
				format.Health,
			)
			if !o.OK() {
				return errors.New(o.Text)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), o.Text)
			return err
		},
	}
}
