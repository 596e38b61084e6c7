package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
)

// Discord webhook limits.
const (
	MaxEmbedsPerMessage = 10
	MaxMessageChars     = 6000
	maxTitle            = 256
	maxFieldValue       = 1024
	maxDescription      = 4096
	maxFields           = 25
)

// DefaultRetries is the number of resend attempts after the first failure.
const DefaultRetries = 3

// ErrNoWebhook is returned when sending without a configured webhook URL.
var ErrNoWebhook = errors.New("discord webhook url not configured")

// StatusError is a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord webhook error: status %d, body: %s", e.Code, e.Body)
}

// Retryable reports whether resending the same payload may succeed.
// Other 4xx responses mean Discord rejected the payload itself.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// DiscordNotifier posts embeds to a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string
	Username   string
	MaxRetries int

	client  *resty.Client
	backoff time.Duration
	metrics *metrics.Metrics
}

// NewDiscordNotifier creates a notifier with optional proxy support.
func NewDiscordNotifier(webhookURL, proxyURL string, timeout time.Duration, m *metrics.Metrics) *DiscordNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		Username:   "MarketPulse",
		MaxRetries: DefaultRetries,
		client:     client,
		backoff:    time.Second,
		metrics:    m,
	}
}

// WithBackoff sets the base retry delay; attempt i waits base·2^i.
func (d *DiscordNotifier) WithBackoff(base time.Duration) *DiscordNotifier {
	d.backoff = base
	return d
}

// Send posts one webhook message.
func (d *DiscordNotifier) Send(ctx context.Context, payload WebhookPayload) error {
	if d.WebhookURL == "" {
		return ErrNoWebhook
	}
	if payload.Username == "" {
		payload.Username = d.Username
	}
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(d.WebhookURL)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	if resp.IsError() {
		return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (d *DiscordNotifier) SendWithRetry(ctx context.Context, payload WebhookPayload, maxRetries int) error {
	logger := zerolog.Ctx(ctx)
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := d.Send(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return fmt.Errorf("discord rejected message: %w", err)
		}
		if errors.Is(err, ErrNoWebhook) || i == maxRetries {
			break
		}
		wait := d.backoff * time.Duration(1<<uint(i))
		logger.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries+1).
			Dur("backoff", wait).
			Msg("discord send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

// SendEmbeds posts embeds in messages of at most MaxEmbedsPerMessage embeds
// and MaxMessageChars characters. It stops at the first message that cannot
// be delivered.
func (d *DiscordNotifier) SendEmbeds(ctx context.Context, embeds []Embed) error {
	for i, chunk := range chunkEmbeds(embeds, MaxEmbedsPerMessage, MaxMessageChars) {
		err := d.SendWithRetry(ctx, WebhookPayload{Embeds: chunk}, d.MaxRetries)
		d.metrics.ObserveNotification(err)
		if err != nil {
			return fmt.Errorf("send chunk %d: %w", i+1, err)
		}
	}
	return nil
}

// SendReport formats and sends one market report.
func (d *DiscordNotifier) SendReport(ctx context.Context, r model.MarketReport) error {
	embeds := BuildReportEmbeds(r)
	zerolog.Ctx(ctx).Info().
		Str("market", r.MarketKey).
		Int("embeds", len(embeds)).
		Msg("sending report to discord")
	return d.SendEmbeds(ctx, embeds)
}

// SendFailure sends a short notice that a market run failed.
func (d *DiscordNotifier) SendFailure(ctx context.Context, market string, cause error) error {
	return d.SendEmbeds(ctx, []Embed{FailureEmbed(market, cause, time.Now())})
}

// chunkEmbeds packs embeds in order, starting a new message whenever the
// next embed would break either the count or the character limit. An embed
// that is too large on its own is shrunk to fit.
func chunkEmbeds(embeds []Embed, maxCount, maxChars int) [][]Embed {
	var out [][]Embed
	var cur []Embed
	size := 0
	for _, e := range embeds {
		e = fitEmbed(e, maxChars)
		n := embedChars(e)
		if len(cur) > 0 && (len(cur) == maxCount || size+n > maxChars) {
			out = append(out, cur)
			cur, size = nil, 0
		}
		cur = append(cur, e)
		size += n
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// embedChars counts the characters Discord charges against the message total.
func embedChars(e Embed) int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	for _, f := range e.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	if e.Footer != nil {
		n += utf8.RuneCountInString(e.Footer.Text)
	}
	return n
}

// fitEmbed drops trailing fields, then cuts the description, until e fits in limit.
func fitEmbed(e Embed, limit int) Embed {
	e.Title = truncate(e.Title, maxTitle)
	if len(e.Fields) > maxFields {
		e.Fields = e.Fields[:maxFields]
	}
	for embedChars(e) > limit && len(e.Fields) > 0 {
		e.Fields = e.Fields[:len(e.Fields)-1]
	}
	if over := embedChars(e) - limit; over > 0 {
		keep := utf8.RuneCountInString(e.Description) - over
		if keep < 1 {
			e.Description = ""
		} else {
			e.Description = truncate(e.Description, keep)
		}
	}
	return e
}
