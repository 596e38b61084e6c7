package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketPulse/internal/notifier"
	"MarketPulse/internal/scheduler"
)

type runFlags struct {
	market      string
	quick       bool
	noDiscovery bool
	webhook     string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.market, "market", "all", "Market to analyze (tw|us|all)")
	cmd.Flags().BoolVar(&f.quick, "quick", false, "Analyze indices only")
	cmd.Flags().BoolVar(&f.noDiscovery, "no-discovery", false, "Skip discovery outside the watchlist")
}

func (f *runFlags) options(a *app) scheduler.RunOptions {
	return scheduler.RunOptions{
		Quick:     f.quick,
		Discovery: a.cfg.Discovery.Enabled && !f.noDiscovery && !f.quick,
	}
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze markets and send the report to Discord",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := log.Logger.WithContext(cmd.Context())
			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.close()

			webhook := a.cfg.Discord.WebhookURL
			if f.webhook != "" {
				webhook = f.webhook
			}
			if webhook == "" {
				return fmt.Errorf("discord webhook required: set discord.webhook_url, DISCORD_WEBHOOK_URL or --webhook")
			}
			markets, err := selectMarkets(a.watchlist.Snapshot(), f.market)
			if err != nil {
				return err
			}
			dn := notifier.NewDiscordNotifier(webhook, a.cfg.DataSource.Proxy, a.cfg.DataSource.Timeout, a.metrics)
			return a.runner(dn).RunAnalysis(ctx, markets, f.options(a))
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&f.webhook, "webhook", "", "Discord webhook URL, overrides the config")
	return cmd
}

func newPrintCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Analyze markets and print the report to the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := log.Logger.WithContext(cmd.Context())
			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.close()

			markets, err := selectMarkets(a.watchlist.Snapshot(), f.market)
			if err != nil {
				return err
			}
			console := notifier.NewConsole(cmd.OutOrStdout())
			return a.runner(console).RunAnalysis(ctx, markets, f.options(a))
		},
	}
	f.bind(cmd)
	return cmd
}
