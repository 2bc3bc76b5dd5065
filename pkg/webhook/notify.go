package webhook

import (
	"context"

	"go.uber.org/zap"

	"github.com/ccollicutt/errprofile/pkg/config"
	"github.com/ccollicutt/errprofile/pkg/output"
)

// ShouldFire reports whether a webhook with the given trigger fires for report.
// An empty or unknown trigger behaves like on_errors.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnFailures:
		return report.HasFailures()
	default:
		return report.HasErrors()
	}
}

// Notify sends report to every webhook whose trigger matches. Delivery
// failures are logged and never returned; they must not fail a run.
// It returns the number of webhooks delivered successfully.
func (c *Client) Notify(ctx context.Context, report *output.Report, hooks []config.WebhookConfig, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	sent := 0
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		if !resp.Success() {
			logger.Warn("webhook failed",
				zap.String("webhook", name),
				zap.Int("status", resp.StatusCode),
				zap.Error(resp.Error))
			continue
		}

		sent++
		logger.Info("webhook sent",
			zap.String("webhook", name),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", resp.Duration))
	}

	return sent
}
