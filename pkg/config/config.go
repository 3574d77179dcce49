package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Jira corpus miner
type Config struct {
	// Jira API settings
	Jira JiraConfig `yaml:"jira" json:"jira"`

	// Fetch loop settings (retries, timeouts, pacing)
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// File paths for checkpoint and corpus stores
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// JiraConfig holds the remote API surface
type JiraConfig struct {
	BaseURL  string   `yaml:"base_url" json:"base_url"`
	Projects []string `yaml:"projects" json:"projects"`
	Fields   []string `yaml:"fields" json:"fields"`
	PageSize int      `yaml:"page_size" json:"page_size"`
}

// FetchConfig holds retry and pacing configuration for the ingestion loop
type FetchConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	RateLimitWait time.Duration `yaml:"rate_limit_wait" json:"rate_limit_wait"`
	TransientWait time.Duration `yaml:"transient_wait" json:"transient_wait"`
	PageDelay     time.Duration `yaml:"page_delay" json:"page_delay"`
}

// PathsConfig holds the on-disk store locations
type PathsConfig struct {
	Checkpoint string `yaml:"checkpoint" json:"checkpoint"`
	RawCorpus  string `yaml:"raw_corpus" json:"raw_corpus"`
	TaskCorpus string `yaml:"task_corpus" json:"task_corpus"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			BaseURL:  "https://issues.apache.org/jira/rest/api/2/search",
			Projects: []string{"SPARK", "KAFKA", "HADOOP"},
			Fields: []string{
				"summary", "description", "comment", "status", "priority",
				"assignee", "labels", "created", "updated", "issuetype", "reporter",
			},
			PageSize: 100,
		},
		Fetch: FetchConfig{
			MaxRetries:    5,
			Timeout:       30 * time.Second,
			RateLimitWait: 60 * time.Second,
			TransientWait: 15 * time.Second,
			PageDelay:     300 * time.Millisecond,
		},
		Paths: PathsConfig{
			Checkpoint: "checkpoint.json",
			RawCorpus:  "jira_corpus_raw.jsonl",
			TaskCorpus: "jira_corpus_llm_ready.jsonl",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("JIRAMINER_BASE_URL"); baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if projects := os.Getenv("JIRAMINER_PROJECTS"); projects != "" {
		c.Jira.Projects = splitList(projects)
	}
	if fields := os.Getenv("JIRAMINER_FIELDS"); fields != "" {
		c.Jira.Fields = splitList(fields)
	}
	if pageSize := os.Getenv("JIRAMINER_PAGE_SIZE"); pageSize != "" {
		if val, err := strconv.Atoi(pageSize); err == nil && val > 0 {
			c.Jira.PageSize = val
		}
	}
	if retries := os.Getenv("JIRAMINER_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val > 0 {
			c.Fetch.MaxRetries = val
		}
	}
	if timeout := os.Getenv("JIRAMINER_TIMEOUT"); timeout != "" {
		if val, err := time.ParseDuration(timeout); err == nil && val > 0 {
			c.Fetch.Timeout = val
		}
	}
	if checkpoint := os.Getenv("JIRAMINER_CHECKPOINT_FILE"); checkpoint != "" {
		c.Paths.Checkpoint = checkpoint
	}
	if raw := os.Getenv("JIRAMINER_RAW_FILE"); raw != "" {
		c.Paths.RawCorpus = raw
	}
	if tasks := os.Getenv("JIRAMINER_TASK_FILE"); tasks != "" {
		c.Paths.TaskCorpus = tasks
	}
	if logLevel := os.Getenv("JIRAMINER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("JIRAMINER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".jiraminer.yaml",
		".jiraminer.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "jiraminer", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "jiraminer", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".jiraminer.yaml"),
		filepath.Join(os.Getenv("HOME"), ".jiraminer.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Jira.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if len(c.Jira.Projects) == 0 {
		errs = append(errs, errors.New("at least one project is required"))
	}
	if c.Jira.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Jira.PageSize > 1000 {
		errs = append(errs, errors.New("page size should not exceed 1000"))
	}

	if c.Fetch.MaxRetries <= 0 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("network timeout must be positive"))
	}
	if c.Fetch.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	if c.Paths.Checkpoint == "" {
		errs = append(errs, errors.New("checkpoint file path is required"))
	}
	if c.Paths.RawCorpus == "" {
		errs = append(errs, errors.New("raw corpus file path is required"))
	}
	if c.Paths.TaskCorpus == "" {
		errs = append(errs, errors.New("task corpus file path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if projects, ok := flags["projects"].([]string); ok && len(projects) > 0 {
		c.Jira.Projects = projects
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Jira.PageSize = pageSize
	}
	if maxRetries, ok := flags["max-retries"].(int); ok && maxRetries > 0 {
		c.Fetch.MaxRetries = maxRetries
	}
	if checkpoint, ok := flags["checkpoint"].(string); ok && checkpoint != "" {
		c.Paths.Checkpoint = checkpoint
	}
	if raw, ok := flags["raw-file"].(string); ok && raw != "" {
		c.Paths.RawCorpus = raw
	}
	if tasks, ok := flags["task-file"].(string); ok && tasks != "" {
		c.Paths.TaskCorpus = tasks
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".jiraminer.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
