package config

import "github.com/hyperjump/suisen/internal/ranking"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = "./movie_dataset.csv"
	}
	if cfg.Dataset.TitleColumn == "" {
		cfg.Dataset.TitleColumn = "original_title"
	}
	if cfg.Dataset.OverviewColumn == "" {
		cfg.Dataset.OverviewColumn = "overview"
	}
	if cfg.Dataset.KeywordsColumn == "" {
		cfg.Dataset.KeywordsColumn = "keywords"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/suisen/data/history.db"
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = ranking.DefaultTopK
	}
	if cfg.Recommend.MaxLimit == 0 {
		cfg.Recommend.MaxLimit = 100
	}
	if cfg.Recommend.OverviewMaxChars == 0 {
		cfg.Recommend.OverviewMaxChars = 300
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
