package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/neztrixTON/app/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// HTTP server configuration
	HTTP HTTPConfig

	// Storage configuration
	Storage StorageConfig

	// Access control configuration
	Access AccessConfig

	// Presence configuration
	Presence PresenceConfig

	// Notification configuration
	Notify NotifyConfig

	// Feishu push configuration (optional)
	Feishu FeishuConfig

	// Moonshot digest configuration (optional)
	Moonshot MoonshotConfig

	// Templates configuration (loaded from YAML)
	Templates *TemplatesConfig

	// TemplatesPath is the file the templates were loaded from, empty for defaults
	TemplatesPath string

	// Logging configuration
	Log LogConfig
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

// StorageConfig contains storage configuration
type StorageConfig struct {
	DBPath         string
	UploadDir      string
	FilesURLPrefix string
	MaxUploadBytes int64
}

// AccessConfig contains permission set configuration
type AccessConfig struct {
	AdminUserIDs         []string
	RequireAdminToCreate bool
}

// PresenceConfig contains presence configuration
type PresenceConfig struct {
	OnlineWindow time.Duration
}

// NotifyConfig contains dispatcher configuration
type NotifyConfig struct {
	SweepInterval time.Duration
	Timeout       time.Duration
	Immediate     bool
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID         string
	AppSecret     string
	ReceiveIDType string
}

// Enabled reports whether Feishu credentials are configured
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// MoonshotConfig contains Moonshot configuration
type MoonshotConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional OpenAI-compatible endpoint override
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// DB path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".chatdesk", "chatdesk.db")
	}

	templatesConfig, templatesPath, err := LoadTemplatesConfig(os.Getenv("TEMPLATES_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr:           envString("HTTP_ADDR", ":3000"),
			AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			DBPath:         dbPath,
			UploadDir:      envString("UPLOAD_DIR", "./uploads"),
			FilesURLPrefix: envString("FILES_URL_PREFIX", "/files"),
			MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 20)) << 20,
		},
		Access: AccessConfig{
			AdminUserIDs:         envList("ADMIN_USER_IDS", nil),
			RequireAdminToCreate: envBool("REQUIRE_ADMIN_TO_CREATE", true),
		},
		Presence: PresenceConfig{
			OnlineWindow: time.Duration(envInt("ONLINE_WINDOW_SECONDS", 30)) * time.Second,
		},
		Notify: NotifyConfig{
			SweepInterval: time.Duration(envInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
			Timeout:       time.Duration(envInt("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,
			Immediate:     envBool("NOTIFY_IMMEDIATE", true),
		},
		Feishu: FeishuConfig{
			AppID:         os.Getenv("FEISHU_APP_ID"),
			AppSecret:     os.Getenv("FEISHU_APP_SECRET"),
			ReceiveIDType: envString("FEISHU_RECEIVE_ID_TYPE", "open_id"),
		},
		Moonshot: MoonshotConfig{
			APIKey:  os.Getenv("MOONSHOT_API_KEY"),
			Model:   os.Getenv("MOONSHOT_MODEL"),
			BaseURL: os.Getenv("MOONSHOT_BASE_URL"),
		},
		Templates:     templatesConfig,
		TemplatesPath: templatesPath,
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Pretty: envBool("LOG_PRETTY", false),
		},
	}, nil
}

// ToRegistryConfig converts to registry configuration
func (c *Config) ToRegistryConfig() usecase.RegistryConfig {
	return usecase.RegistryConfig{
		RequireAdmin: c.Access.RequireAdminToCreate,
	}
}

// ToNotifyConfig converts to dispatcher configuration
func (c *Config) ToNotifyConfig() usecase.NotifyConfig {
	return usecase.NotifyConfig{
		Immediate: c.Notify.Immediate,
		Timeout:   c.Notify.Timeout,
		Templates: c.ToTemplateConfig(),
	}
}

// ToTemplateConfig converts to template configuration
func (c *Config) ToTemplateConfig() usecase.TemplateConfig {
	if c.Templates == nil {
		return usecase.DefaultTemplateConfig
	}
	t := c.Templates
	return usecase.TemplateConfig{
		AttachmentPlaceholder: t.Preview.AttachmentPlaceholder,
		OwnMessagePrefix:      t.Preview.OwnMessagePrefix,
		MissingReply:          t.Preview.MissingReply,
		PreviewLength:         t.Preview.MaxLength,
		DefaultTitle:          t.Chat.DefaultTitle,
		NotifyTitle:           t.Notification.Title,
		NotifyBody:            t.Notification.Body,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return &ConfigError{Field: "DB_PATH", Message: "required"}
	}
	if c.Presence.OnlineWindow <= 0 {
		return &ConfigError{Field: "ONLINE_WINDOW_SECONDS", Message: "must be positive"}
	}
	if c.Notify.SweepInterval <= 0 {
		return &ConfigError{Field: "SWEEP_INTERVAL_SECONDS", Message: "must be positive"}
	}
	if c.Notify.Timeout <= 0 {
		return &ConfigError{Field: "NOTIFY_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if (c.Feishu.AppID == "") != (c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "both or neither must be set"}
	}
	if c.Access.RequireAdminToCreate && len(c.Access.AdminUserIDs) == 0 {
		return &ConfigError{Field: "ADMIN_USER_IDS", Message: "required when REQUIRE_ADMIN_TO_CREATE is true"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}

// envList splits a comma separated value, dropping empty items
func envList(key string, def []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
