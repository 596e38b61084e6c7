package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketPulse/internal/metrics"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/scheduler"
)

func newScheduleCmd(g *globalFlags) *cobra.Command {
	var (
		runNow      bool
		noDiscovery bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the per-market report jobs on their cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = log.Logger.WithContext(ctx)

			a, err := newApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.close()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			dn := notifier.NewDiscordNotifier(a.cfg.Discord.WebhookURL, a.cfg.DataSource.Proxy, a.cfg.DataSource.Timeout, a.metrics)
			if a.cfg.Discord.WebhookURL == "" {
				log.Warn().Msg("no discord webhook configured, reports will fail to send")
			}
			opts := scheduler.RunOptions{Discovery: a.cfg.Discovery.Enabled && !noDiscovery}
			sched := scheduler.NewScheduler(ctx, a.runner(dn), a.watchlist.Snapshot, opts, loc)
			if err := sched.RegisterAll(a.cfg.Schedule.Jobs); err != nil {
				return err
			}

			var srv *metrics.Server
			if a.cfg.Metrics.Addr != "" {
				srv = metrics.NewServer(a.cfg.Metrics.Addr, a.registry)
				srv.Start()
			}

			sched.Start()
			if runNow {
				for _, m := range a.watchlist.Snapshot().Markets {
					go sched.RunMarketNow(m.Key)
				}
			}
			log.Info().Str("timezone", loc.String()).Msg("marketpulse is running, press Ctrl+C to stop")

			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			sched.Stop()
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Stop(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("metrics server shutdown")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run every market once at startup")
	cmd.Flags().BoolVar(&noDiscovery, "no-discovery", false, "Skip discovery outside the watchlist")
	return cmd
}
