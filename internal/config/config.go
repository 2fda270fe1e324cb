// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag"`
	Weight int      `yaml:"weight"`
	Any    []string `yaml:"any"`
}

type FieldWeights struct {
	Name     int `yaml:"name"`
	Company  int `yaml:"company"`
	Title    int `yaml:"title"`
	Phone    int `yaml:"phone"`
	LinkedIn int `yaml:"linkedin"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Owner struct {
		Emails []string `yaml:"emails"`
	} `yaml:"owner"`

	Review struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		AutoApprove    struct {
			Enabled  bool `yaml:"enabled"`
			MinScore int  `yaml:"min_score"`
		} `yaml:"auto_approve"`
	} `yaml:"review"`

	Exclusions struct {
		Domains []string `yaml:"domains"`
		Names   []string `yaml:"names"`
		Phones  []string `yaml:"phones"`
	} `yaml:"exclusions"`

	Scoring struct {
		FieldWeights FieldWeights `yaml:"field_weights"`
		TitleRules   []Rule       `yaml:"title_rules"`
	} `yaml:"scoring"`

	Ingest struct {
		Enabled     bool   `yaml:"enabled"`
		IMAPHost    string `yaml:"imap_host"`
		IMAPPort    int    `yaml:"imap_port"`
		Username    string `yaml:"username"`
		Mailbox     string `yaml:"mailbox"`
		PollSeconds int    `yaml:"poll_seconds"`
	} `yaml:"ingest"`

	Backend struct {
		Enabled     bool   `yaml:"enabled"`
		BaseURL     string `yaml:"base_url"`
		PushSeconds int    `yaml:"push_seconds"`
	} `yaml:"backend"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
