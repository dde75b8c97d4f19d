package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/catherinechia/p4sbip/internal/config"
	"github.com/catherinechia/p4sbip/internal/domain"
)

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.TelegramConfig{})
	if err := n.PublishDigest(context.Background(), domain.RunSummary{}); err == nil {
		t.Fatal("missing credentials must be rejected")
	}
}

func TestDigestMessage(t *testing.T) {
	t.Parallel()

	msg := digestMessage(domain.RunSummary{
		RunID:                "20260830-120000",
		Samples:              6,
		GenesLoaded:          2700,
		GenesRetained:        2500,
		DroppedLowCount:      180,
		Strategy:             "rle",
		Upregulated:          12,
		Downregulated:        7,
		ExcludedPValues:      3,
		KEGGSetsTested:       90,
		GOSetsTested:         41,
		ProteomicsConcordant: 5,
		ProteomicsDiscordant: 2,
	})

	for _, want := range []string{
		"*Run 20260830-120000*",
		"Samples: 6",
		"Genes retained: 2500 of 2700 (180 low-count dropped)",
		"Normalization: rle",
		"Upregulated: 12",
		"Downregulated: 7",
		"P-values excluded from FDR: 3",
		"Sets tested: 90 KEGG / 41 GO",
		"Proteomics concordant: 5, discordant: 2",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("digest lacks %q:\n%s", want, msg)
		}
	}
}

func TestDigestMessageOmitsZeroExclusions(t *testing.T) {
	t.Parallel()

	msg := digestMessage(domain.RunSummary{RunID: "r"})
	if strings.Contains(msg, "excluded from FDR") {
		t.Fatalf("zero exclusions must not be reported:\n%s", msg)
	}
}
