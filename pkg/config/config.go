package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/jinbot"
	ConfigFileName    = "jinbot.yml"
)

// Store backends
const (
	StoreFile     = "file"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Update delivery modes
const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

const (
	MinPostInterval = 1
	MaxPostInterval = 60
)

// ValidStores is the list of supported state store backends
var ValidStores = []string{StoreFile, StoreBolt, StorePostgres}

// ValidModes is the list of supported update delivery modes
var ValidModes = []string{ModeWebhook, ModePolling}

// BotConfig holds all jinbot configuration settings
type BotConfig struct {
	// TelegramToken is the bot API token issued by BotFather
	TelegramToken string `yaml:"telegram_token" json:"-"`

	// WebhookBase is the public base URL Telegram posts updates to
	WebhookBase string `yaml:"webhook_base" json:"webhook_base"`

	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        int    `yaml:"port" json:"port"`

	// MemeDir is the directory memes are served from (likes.json lives here too)
	MemeDir string `yaml:"meme_dir" json:"meme_dir"`

	// StateDir holds group_id.txt and the bolt database
	StateDir string `yaml:"state_dir" json:"state_dir"`

	// PostIntervalMinutes is the default posting interval
	PostIntervalMinutes int `yaml:"post_interval_minutes" json:"post_interval_minutes"`

	// RandomOrder makes scheduled posts pick memes at random instead of in order
	RandomOrder bool `yaml:"random_order" json:"random_order"`

	Store       string `yaml:"store" json:"store"`
	DatabaseURL string `yaml:"database_url" json:"-"`

	UpdateMode string `yaml:"update_mode" json:"update_mode"`

	// ControlSecret enables HS256 JWT auth on control endpoints when set
	ControlSecret string `yaml:"control_secret" json:"-"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	sources        map[string]string
	configFilePath string
}

// fileConfig mirrors BotConfig with pointer fields so that explicit zero
// values in the file can be told apart from absent keys.
type fileConfig struct {
	TelegramToken       *string `yaml:"telegram_token"`
	WebhookBase         *string `yaml:"webhook_base"`
	BindAddress         *string `yaml:"bind_address"`
	Port                *int    `yaml:"port"`
	MemeDir             *string `yaml:"meme_dir"`
	StateDir            *string `yaml:"state_dir"`
	PostIntervalMinutes *int    `yaml:"post_interval_minutes"`
	RandomOrder         *bool   `yaml:"random_order"`
	Store               *string `yaml:"store"`
	DatabaseURL         *string `yaml:"database_url"`
	UpdateMode          *string `yaml:"update_mode"`
	ControlSecret       *string `yaml:"control_secret"`
	LogLevel            *string `yaml:"log_level"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values
func newDefault() *BotConfig {
	return &BotConfig{
		BindAddress:         "0.0.0.0",
		Port:                10000,
		MemeDir:             "memes",
		StateDir:            ".",
		PostIntervalMinutes: 10,
		RandomOrder:         false,
		Store:               StoreFile,
		UpdateMode:          ModeWebhook,
		LogLevel:            "info",
		sources:             make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*BotConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("JINBOT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	config.WebhookBase = strings.TrimRight(config.WebhookBase, "/")

	return config, nil
}

func attributeNames() []string {
	return []string{
		"telegram_token", "webhook_base", "bind_address", "port",
		"meme_dir", "state_dir", "post_interval_minutes", "random_order",
		"store", "database_url", "update_mode", "control_secret", "log_level",
	}
}

func (c *BotConfig) applyFileConfig(file *fileConfig) {
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			c.sources[name] = "file"
		}
	}
	setString("telegram_token", &c.TelegramToken, file.TelegramToken)
	setString("webhook_base", &c.WebhookBase, file.WebhookBase)
	setString("bind_address", &c.BindAddress, file.BindAddress)
	setString("meme_dir", &c.MemeDir, file.MemeDir)
	setString("state_dir", &c.StateDir, file.StateDir)
	setString("store", &c.Store, file.Store)
	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	setString("update_mode", &c.UpdateMode, file.UpdateMode)
	setString("control_secret", &c.ControlSecret, file.ControlSecret)
	setString("log_level", &c.LogLevel, file.LogLevel)

	if file.Port != nil {
		c.Port = *file.Port
		c.sources["port"] = "file"
	}
	if file.PostIntervalMinutes != nil {
		c.PostIntervalMinutes = *file.PostIntervalMinutes
		c.sources["post_interval_minutes"] = "file"
	}
	if file.RandomOrder != nil {
		c.RandomOrder = *file.RandomOrder
		c.sources["random_order"] = "file"
	}
}

func (c *BotConfig) applyEnvConfig() error {
	strEnv := map[string]struct {
		name string
		dst  *string
	}{
		"TELEGRAM_TOKEN":        {"telegram_token", &c.TelegramToken},
		"WEBHOOK_BASE":          {"webhook_base", &c.WebhookBase},
		"BIND_ADDRESS":          {"bind_address", &c.BindAddress},
		"MEME_DIR":              {"meme_dir", &c.MemeDir},
		"JINBOT_STATE_DIR":      {"state_dir", &c.StateDir},
		"JINBOT_STORE":          {"store", &c.Store},
		"DATABASE_URL":          {"database_url", &c.DatabaseURL},
		"JINBOT_UPDATE_MODE":    {"update_mode", &c.UpdateMode},
		"JINBOT_CONTROL_SECRET": {"control_secret", &c.ControlSecret},
		"JINBOT_LOG_LEVEL":      {"log_level", &c.LogLevel},
	}
	for env, attr := range strEnv {
		if val := os.Getenv(env); val != "" {
			*attr.dst = val
			c.sources[attr.name] = "environment"
		}
	}

	if val := os.Getenv("PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", val, err)
		}
		c.Port = i
		c.sources["port"] = "environment"
	}
	if val := os.Getenv("JINBOT_POST_INTERVAL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid JINBOT_POST_INTERVAL %q: %w", val, err)
		}
		c.PostIntervalMinutes = i
		c.sources["post_interval_minutes"] = "environment"
	}
	if val := os.Getenv("JINBOT_RANDOM_ORDER"); val != "" {
		c.RandomOrder = val == "true" || val == "1"
		c.sources["random_order"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *BotConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *BotConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// PostInterval returns the configured posting interval as a duration
func (c *BotConfig) PostInterval() time.Duration {
	return time.Duration(c.PostIntervalMinutes) * time.Minute
}

// Addr returns the HTTP listen address
func (c *BotConfig) Addr() string {
	return c.BindAddress + ":" + strconv.Itoa(c.Port)
}

// WebhookPath is the route Telegram posts updates to. The token in the
// path keeps the endpoint unguessable.
func (c *BotConfig) WebhookPath() string {
	return "/webhook/" + c.TelegramToken
}

// WebhookURL returns the full webhook URL, or "" when no base is configured
func (c *BotConfig) WebhookURL() string {
	if c.WebhookBase == "" {
		return ""
	}
	return c.WebhookBase + c.WebhookPath()
}

// Validate validates the configuration
func (c *BotConfig) Validate() error {
	if c.TelegramToken == "" || strings.HasPrefix(c.TelegramToken, "PASTE") {
		return errors.New("a valid bot token is required in TELEGRAM_TOKEN")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.PostIntervalMinutes < MinPostInterval || c.PostIntervalMinutes > MaxPostInterval {
		return fmt.Errorf("post_interval_minutes must be between %d and %d, got %d",
			MinPostInterval, MaxPostInterval, c.PostIntervalMinutes)
	}
	if !contains(ValidStores, c.Store) {
		return fmt.Errorf("invalid store: %s", c.Store)
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres store")
	}
	if !contains(ValidModes, c.UpdateMode) {
		return fmt.Errorf("invalid update_mode: %s", c.UpdateMode)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secrets are redacted.
func (c *BotConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "telegram_token", Value: redact(c.TelegramToken), Source: c.Source("telegram_token")},
		{Name: "webhook_base", Value: c.WebhookBase, Source: c.Source("webhook_base")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "meme_dir", Value: c.MemeDir, Source: c.Source("meme_dir")},
		{Name: "state_dir", Value: c.StateDir, Source: c.Source("state_dir")},
		{Name: "post_interval_minutes", Value: strconv.Itoa(c.PostIntervalMinutes), Source: c.Source("post_interval_minutes")},
		{Name: "random_order", Value: strconv.FormatBool(c.RandomOrder), Source: c.Source("random_order")},
		{Name: "store", Value: c.Store, Source: c.Source("store")},
		{Name: "database_url", Value: redact(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "update_mode", Value: c.UpdateMode, Source: c.Source("update_mode")},
		{Name: "control_secret", Value: redact(c.ControlSecret), Source: c.Source("control_secret")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
	}
}

// Attribute looks up one attribute by name
func (c *BotConfig) Attribute(name string) (Attribute, bool) {
	for _, attr := range c.Attributes() {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// FormatText returns a text representation of the configuration
func (c *BotConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *BotConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
