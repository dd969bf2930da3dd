package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TemplatesConfig contains the user-facing texts loaded from YAML
type TemplatesConfig struct {
	Preview      PreviewTemplates      `yaml:"preview"`
	Chat         ChatTemplates         `yaml:"chat"`
	Notification NotificationTemplates `yaml:"notification"`
}

// PreviewTemplates contains chat list and reply preview texts
type PreviewTemplates struct {
	AttachmentPlaceholder string `yaml:"attachment_placeholder"`
	OwnMessagePrefix      string `yaml:"own_message_prefix"`
	MissingReply          string `yaml:"missing_reply"`
	MaxLength             int    `yaml:"max_length"`
}

// ChatTemplates contains chat texts
type ChatTemplates struct {
	DefaultTitle string `yaml:"default_title"`
}

// NotificationTemplates contains push texts
type NotificationTemplates struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// LoadTemplatesConfig loads templates configuration from YAML file.
// Returns the path it loaded from, or "" when defaults are used.
func LoadTemplatesConfig(configPath string) (*TemplatesConfig, string, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/templates.yaml",
			"/etc/chatdesk/templates.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "templates.yaml"))
		}
	}

	var data []byte
	var loadedPath string

	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, "", fmt.Errorf("failed to read templates config %s", configPath)
		}
		return DefaultTemplatesConfig(), "", nil
	}

	var config TemplatesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, loadedPath, nil
}

// fillDefaults fills in default values for empty fields
func (c *TemplatesConfig) fillDefaults() {
	defaults := DefaultTemplatesConfig()

	if c.Preview.AttachmentPlaceholder == "" {
		c.Preview.AttachmentPlaceholder = defaults.Preview.AttachmentPlaceholder
	}
	if c.Preview.OwnMessagePrefix == "" {
		c.Preview.OwnMessagePrefix = defaults.Preview.OwnMessagePrefix
	}
	if c.Preview.MissingReply == "" {
		c.Preview.MissingReply = defaults.Preview.MissingReply
	}
	if c.Preview.MaxLength == 0 {
		c.Preview.MaxLength = defaults.Preview.MaxLength
	}

	if c.Chat.DefaultTitle == "" {
		c.Chat.DefaultTitle = defaults.Chat.DefaultTitle
	}

	if c.Notification.Title == "" {
		c.Notification.Title = defaults.Notification.Title
	}
	if c.Notification.Body == "" {
		c.Notification.Body = defaults.Notification.Body
	}
}

// DefaultTemplatesConfig returns the default templates configuration
func DefaultTemplatesConfig() *TemplatesConfig {
	return &TemplatesConfig{
		Preview: PreviewTemplates{
			AttachmentPlaceholder: "[file]",
			OwnMessagePrefix:      "You: ",
			MissingReply:          "message not found",
			MaxLength:             80,
		},
		Chat: ChatTemplates{
			DefaultTitle: "Chat with {{other}}",
		},
		Notification: NotificationTemplates{
			Title: "{{title}}",
			Body:  "{{count}} unread message(s) from {{from}}: {{preview}}",
		},
	}
}
