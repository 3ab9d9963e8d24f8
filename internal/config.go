package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/decisionlog/internal/generator"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	Index     IndexConfig       `yaml:"index"`
	Auth      AuthConfig        `yaml:"auth"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WorkspaceConfig locates the knowledge base. Every path except Root is
// relative to Root.
type WorkspaceConfig struct {
	Root         string `yaml:"root"`
	DecisionsDir string `yaml:"decisions_dir"`
	IdeasDir     string `yaml:"ideas_dir"`
	Changelog    string `yaml:"changelog"`
	Relations    string `yaml:"relations"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	relative := validation.By(func(v interface{}) error {
		if s, _ := v.(string); filepath.IsAbs(s) {
			return fmt.Errorf("must be relative to the workspace root")
		}
		return nil
	})
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DecisionsDir, validation.Required, relative),
		validation.Field(&c.IdeasDir, validation.Required, relative),
		validation.Field(&c.Changelog, validation.Required, relative),
		validation.Field(&c.Relations, validation.Required, relative),
	)
}

// Paths converts the workspace layout for the generator.
func (c *WorkspaceConfig) Paths() generator.Paths {
	return generator.Paths{
		DecisionsDir: c.DecisionsDir,
		IdeasDir:     c.IdeasDir,
		Changelog:    c.Changelog,
		Relations:    c.Relations,
	}
}

// IndexConfig holds the SQLite query index configuration. An empty Path
// keeps the index in memory.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration for the serve command.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig tunes the file watcher used by the watch and serve commands.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	paths := generator.DefaultPaths()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Workspace: WorkspaceConfig{
			Root:         ".",
			DecisionsDir: paths.DecisionsDir,
			IdeasDir:     paths.IdeasDir,
			Changelog:    paths.Changelog,
			Relations:    paths.Relations,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}
