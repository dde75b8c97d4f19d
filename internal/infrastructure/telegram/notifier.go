// Package telegram renders the run summary as a Markdown digest and sends
// it to a chat via the bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/domain"
	"github.com/catherinechia/p4sbip/internal/ports"
)

// Notifier sends run digests to a Telegram chat.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier builds a notifier from configuration.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest formats the run summary and posts it as a Markdown message.
func (n *Notifier) PublishDigest(ctx context.Context, run domain.RunSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", digestMessage(run))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// digestMessage lays the stage counters out as one Markdown block.
func digestMessage(run domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Run %s*\n", run.RunID)
	fmt.Fprintf(&b, "Samples: %d\n", run.Samples)
	fmt.Fprintf(&b, "Genes retained: %d of %d (%d low-count dropped)\n",
		run.GenesRetained, run.GenesLoaded, run.DroppedLowCount)
	fmt.Fprintf(&b, "Normalization: %s\n", run.Strategy)
	fmt.Fprintf(&b, "Upregulated: %d\nDownregulated: %d\n", run.Upregulated, run.Downregulated)
	if run.ExcludedPValues > 0 {
		fmt.Fprintf(&b, "P-values excluded from FDR: %d\n", run.ExcludedPValues)
	}
	fmt.Fprintf(&b, "Sets tested: %d KEGG / %d GO\n", run.KEGGSetsTested, run.GOSetsTested)
	fmt.Fprintf(&b, "Proteomics concordant: %d, discordant: %d",
		run.ProteomicsConcordant, run.ProteomicsDiscordant)
	return b.String()
}
