package notifier

import (
	"context"

	"MarketPulse/internal/model"
)

// Reporter delivers finished market reports. Formatting is entirely the
// reporter's concern.
type Reporter interface {
	SendReport(ctx context.Context, r model.MarketReport) error
	SendFailure(ctx context.Context, market string, cause error) error
}

var (
	_ Reporter = (*DiscordNotifier)(nil)
	_ Reporter = (*Console)(nil)
)
