package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".ohg-scribe/data/history.db"
	}
	if cfg.Storage.HistoryIndexPath == "" {
		cfg.Storage.HistoryIndexPath = ".ohg-scribe/data/history-index"
	}
	if cfg.Storage.VocabularyDir == "" {
		cfg.Storage.VocabularyDir = ".ohg-scribe/vocabularies/user"
	}
	if cfg.Terms.BaseURL == "" {
		cfg.Terms.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Terms.Model == "" {
		cfg.Terms.Model = "gpt-4o-mini"
	}
	if cfg.Terms.MaxTokens == 0 {
		cfg.Terms.MaxTokens = 4096
	}
}
