package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketPulse/internal/notifier"
)

func newPredictCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Predict the coming week for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := log.Logger.WithContext(cmd.Context())
			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.predictor.PredictStock(ctx, strings.ToUpper(strings.TrimSpace(args[0])), "")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), notifier.RenderPrediction(*p))
			return err
		},
	}
}
