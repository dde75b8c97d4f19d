package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "P4SBIP_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	keggURLEnv       = "KEGG_REST_URL"
	webhookURLEnv    = "DIGEST_WEBHOOK_URL"
	webhookTokenEnv  = "DIGEST_WEBHOOK_TOKEN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Inputs        InputConfig         `yaml:"inputs"`
	Output        OutputConfig        `yaml:"output"`
	Filter        FilterConfig        `yaml:"filter"`
	Normalization NormalizationConfig `yaml:"normalization"`
	DE            DEConfig            `yaml:"de"`
	Enrichment    EnrichmentConfig    `yaml:"enrichment"`
	Proteomics    ProteomicsConfig    `yaml:"proteomics"`
	Database      DatabaseConfig      `yaml:"database"`
	Notifications NotificationConfig  `yaml:"notifications"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InputConfig names the five delimited input tables.
type InputConfig struct {
	Design     string `yaml:"design"`
	Counts     string `yaml:"counts"`
	GeneMap    string `yaml:"geneMap"`
	Proteomics string `yaml:"proteomics"`
	GOTerms    string `yaml:"goTerms"`
	Delimiter  string `yaml:"delimiter"`
}

// Separator resolves the configured field delimiter, defaulting to tab.
func (c InputConfig) Separator() rune {
	if c.Delimiter == "" {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// OutputConfig locates the result directory.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// FilterConfig parameterizes the count filter.
type FilterConfig struct {
	LowCountThreshold int    `yaml:"lowCountThreshold"`
	NonCodingMarker   string `yaml:"noncodingMarker"`
}

// NormalizationConfig selects the active size-factor strategy.
type NormalizationConfig struct {
	Strategy string `yaml:"strategy"`
}

// DEConfig carries the dual significance thresholds.
type DEConfig struct {
	PValueCutoff float64 `yaml:"pValueCutoff"`
	LFCCutoff    float64 `yaml:"lfcCutoff"`
}

// EnrichmentConfig bounds the gene-set tests and locates the pathway source.
type EnrichmentConfig struct {
	Organism     string `yaml:"organism"`
	KEGGURL      string `yaml:"keggUrl"`
	MinSetSize   int    `yaml:"minSetSize"`
	MaxSetSize   int    `yaml:"maxSetSize"`
	Permutations int    `yaml:"permutations"`
	Seed         int64  `yaml:"seed"`
}

// ProteomicsConfig controls description parsing and the concordance bound.
type ProteomicsConfig struct {
	GeneDelimiter string  `yaml:"geneDelimiter"`
	AxisBound     float64 `yaml:"axisBound"`
}

// DatabaseConfig describes the optional Postgres results store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound digest channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig wires all data required to send the digest message.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WebhookConfig points at an endpoint receiving the JSON digest.
type WebhookConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(keggURLEnv); v != "" {
		c.Enrichment.KEGGURL = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Webhook.URL = v
	}

	if v := os.Getenv(webhookTokenEnv); v != "" {
		c.Notifications.Webhook.Token = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Inputs.Design != "" {
		base.Inputs.Design = override.Inputs.Design
	}
	if override.Inputs.Counts != "" {
		base.Inputs.Counts = override.Inputs.Counts
	}
	if override.Inputs.GeneMap != "" {
		base.Inputs.GeneMap = override.Inputs.GeneMap
	}
	if override.Inputs.Proteomics != "" {
		base.Inputs.Proteomics = override.Inputs.Proteomics
	}
	if override.Inputs.GOTerms != "" {
		base.Inputs.GOTerms = override.Inputs.GOTerms
	}
	if override.Inputs.Delimiter != "" {
		base.Inputs.Delimiter = override.Inputs.Delimiter
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.Filter.LowCountThreshold != 0 {
		base.Filter.LowCountThreshold = override.Filter.LowCountThreshold
	}
	if override.Filter.NonCodingMarker != "" {
		base.Filter.NonCodingMarker = override.Filter.NonCodingMarker
	}

	if override.Normalization.Strategy != "" {
		base.Normalization = override.Normalization
	}

	if override.DE.PValueCutoff != 0 {
		base.DE.PValueCutoff = override.DE.PValueCutoff
	}
	if override.DE.LFCCutoff != 0 {
		base.DE.LFCCutoff = override.DE.LFCCutoff
	}

	if override.Enrichment.Organism != "" {
		base.Enrichment.Organism = override.Enrichment.Organism
	}
	if override.Enrichment.KEGGURL != "" {
		base.Enrichment.KEGGURL = override.Enrichment.KEGGURL
	}
	if override.Enrichment.MinSetSize != 0 {
		base.Enrichment.MinSetSize = override.Enrichment.MinSetSize
	}
	if override.Enrichment.MaxSetSize != 0 {
		base.Enrichment.MaxSetSize = override.Enrichment.MaxSetSize
	}
	if override.Enrichment.Permutations != 0 {
		base.Enrichment.Permutations = override.Enrichment.Permutations
	}
	if override.Enrichment.Seed != 0 {
		base.Enrichment.Seed = override.Enrichment.Seed
	}

	if override.Proteomics.GeneDelimiter != "" {
		base.Proteomics.GeneDelimiter = override.Proteomics.GeneDelimiter
	}
	if override.Proteomics.AxisBound != 0 {
		base.Proteomics.AxisBound = override.Proteomics.AxisBound
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Webhook.URL != "" {
		base.Notifications.Webhook.URL = override.Notifications.Webhook.URL
	}
	if override.Notifications.Webhook.Token != "" {
		base.Notifications.Webhook.Token = override.Notifications.Webhook.Token
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Inputs: InputConfig{
			Design:     "data/transcriptomics_design.tsv",
			Counts:     "data/raw_counts.tsv",
			GeneMap:    "data/gene_id_matching.tsv",
			Proteomics: "data/proteomics.tsv",
			GOTerms:    "data/go_terms.tsv",
			Delimiter:  "\t",
		},
		Output: OutputConfig{Dir: "results"},
		Filter: FilterConfig{
			LowCountThreshold: 24,
			NonCodingMarker:   ".",
		},
		Normalization: NormalizationConfig{Strategy: "rle"},
		DE: DEConfig{
			PValueCutoff: 0.1,
			LFCCutoff:    1,
		},
		Enrichment: EnrichmentConfig{
			Organism:     "syf",
			KEGGURL:      "https://rest.kegg.jp",
			MinSetSize:   10,
			MaxSetSize:   500,
			Permutations: 1000,
			Seed:         1,
		},
		Proteomics: ProteomicsConfig{
			GeneDelimiter: "GN=",
			AxisBound:     1,
		},
		Database: DatabaseConfig{DSN: ""},
	}
}
