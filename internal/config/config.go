package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "RBOARD_CONFIG"

// Config is the root configuration for rboard, stored in ~/.rboard/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// DataDir holds the storage container and auth tokens. Empty = ~/.rboard.
	DataDir string `json:"data_dir"`
	// Storage selects the container backend: "file" or "sqlite".
	Storage string `json:"storage"`
	// Container is the name of the JSON mapping holding every period.
	Container string        `json:"container"`
	Board     BoardConfig   `json:"board"`
	TUI       TUIConfig     `json:"tui"`
	LogLevel  string        `json:"log_level"`
	Outlook   OutlookConfig `json:"outlook"`
}

// BoardConfig holds the surface layout in pixels.
type BoardConfig struct {
	RowHeight         float64 `json:"row_height"`
	DefaultResources  int     `json:"default_resources"`
	MinCreateWidth    float64 `json:"min_create_width"`
	MinResizeWidth    float64 `json:"min_resize_width"`
	EventHeight       float64 `json:"event_height"`
	ResizeHandleWidth float64 `json:"resize_handle_width"`
	DeleteControlSize float64 `json:"delete_control_size"`
}

// TUIConfig controls the terminal surface.
type TUIConfig struct {
	// CellWidthPx is the number of board pixels covered by one terminal column.
	CellWidthPx float64 `json:"cell_width_px"`
	// LabelWidth is the width in columns of the row label gutter.
	LabelWidth int `json:"label_width"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar publish settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
	// CalendarID selects the target calendar. Empty = the user's default calendar.
	CalendarID string `json:"calendar_id"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	DefaultStorage   = "file"
	DefaultContainer = "calendarData"
	DefaultLogLevel  = "info"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Storage:   DefaultStorage,
		Container: DefaultContainer,
		Board: BoardConfig{
			RowHeight:         60,
			DefaultResources:  15,
			MinCreateWidth:    4,
			MinResizeWidth:    10,
			EventHeight:       40,
			ResizeHandleWidth: 12,
			DeleteControlSize: 16,
		},
		TUI: TUIConfig{
			CellWidthPx: 8,
			LabelWidth:  14,
		},
		LogLevel: DefaultLogLevel,
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// rboard configuration – ~/.rboard/config.json
//
// All settings are optional; zero or missing values fall back to the
// defaults shown below.
{
  // Directory for the board container and auth tokens. Empty = ~/.rboard
  "data_dir": "",

  // Container backend: "file" (<data_dir>/<container>.json) or
  // "sqlite" (<data_dir>/board.db).
  "storage": "file",

  // Name of the container holding every period.
  "container": "calendarData",

  // ── Board layout (pixels) ────────────────────────────────────────────────
  "board": {
    "row_height": 60,
    "default_resources": 15,
    // A create drag must be wider than this to produce an event.
    "min_create_width": 4,
    // A resize never shrinks an event below this width.
    "min_resize_width": 10,
    "event_height": 40,
    "resize_handle_width": 12,
    "delete_control_size": 16
  },

  // ── Terminal surface ─────────────────────────────────────────────────────
  "tui": {
    // Board pixels per terminal column. 8 px = 160 minutes.
    "cell_width_px": 8,
    "label_width": 14
  },

  // debug | info | warn | error
  "log_level": "info",

  // ── Microsoft Graph / Outlook calendar publish ───────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // IANA timezone for published event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC.
    "timezone": "",

    // Target calendar ID. Leave empty for the default calendar.
    "calendar_id": ""
  }
}
`

// Path resolves the config file location: the explicit path if given, then
// $RBOARD_CONFIG, then ~/.rboard/config.json.
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rboard", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path (see Path), creating it with annotated
// defaults on first run.
func Load(path string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := Path(path)
	if err != nil {
		return Default(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefault(path); writeErr != nil {
			logger.Warn("could not create config file", "path", path, "err", writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes commented JSON and back-fills zero values with defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config: %w\nTip: delete the file to regenerate defaults", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	switch c.Storage {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q (want file or sqlite)", c.Storage)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Storage == "" {
		c.Storage = d.Storage
	}
	if c.Container == "" {
		c.Container = d.Container
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}

	b := &c.Board
	if b.RowHeight <= 0 {
		b.RowHeight = d.Board.RowHeight
	}
	if b.DefaultResources <= 0 {
		b.DefaultResources = d.Board.DefaultResources
	}
	if b.MinCreateWidth <= 0 {
		b.MinCreateWidth = d.Board.MinCreateWidth
	}
	if b.MinResizeWidth <= 0 {
		b.MinResizeWidth = d.Board.MinResizeWidth
	}
	if b.EventHeight <= 0 {
		b.EventHeight = d.Board.EventHeight
	}
	if b.ResizeHandleWidth <= 0 {
		b.ResizeHandleWidth = d.Board.ResizeHandleWidth
	}
	if b.DeleteControlSize <= 0 {
		b.DeleteControlSize = d.Board.DeleteControlSize
	}

	if c.TUI.CellWidthPx <= 0 {
		c.TUI.CellWidthPx = d.TUI.CellWidthPx
	}
	if c.TUI.LabelWidth <= 0 {
		c.TUI.LabelWidth = d.TUI.LabelWidth
	}

	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
}

// ResolveDataDir returns DataDir, or ~/.rboard when it is empty.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rboard"), nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
