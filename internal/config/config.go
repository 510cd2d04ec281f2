package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the definitions directory.
const FileName = "acctsplit.yaml"

// Config represents the top-level acctsplit.yaml configuration.
type Config struct {
	Files FilesConfig `yaml:"files"`
	Tree  TreeConfig  `yaml:"tree"`
	Git   GitConfig   `yaml:"git"`
}

// FilesConfig names the inputs and outputs of a run.
type FilesConfig struct {
	Definitions   string `yaml:"definitions"`
	Records       string `yaml:"records"` // glob matched case-insensitively
	TreeOutput    string `yaml:"tree_output"`
	CreatedOutput string `yaml:"created_output"`
	MatchOutput   string `yaml:"match_output"`
	LogOutput     string `yaml:"log_output"`
}

// TreeConfig controls the tree relationships output.
type TreeConfig struct {
	ChildIndent string `yaml:"child_indent"`
}

// GitConfig controls committing rewritten records.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an acctsplit.yaml file from disk. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOptional reads path if it exists and returns the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the file names and settings used when no config exists.
func Default() *Config {
	return &Config{
		Files: FilesConfig{
			Definitions:   "Accounts.xxa",
			Records:       "*.xmo",
			TreeOutput:    "updatedTree.txt",
			CreatedOutput: "createdAccounts.txt",
			MatchOutput:   "AccountsWithObjectOutput.txt",
			LogOutput:     "processing.log",
		},
		Tree: TreeConfig{
			ChildIndent: "   ",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "acctsplit",
			AuthorEmail: "acctsplit@cleared.dev",
		},
	}
}
