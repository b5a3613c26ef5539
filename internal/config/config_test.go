package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTemplateParsesToDefaults(t *testing.T) {
	got, err := Parse([]byte(configTemplate))
	if err != nil {
		t.Fatalf("Parse(template): %v", err)
	}
	if want := Default(); !reflect.DeepEqual(got, want) {
		t.Errorf("template = %+v\nwant %+v", got, want)
	}
}

func TestParseBackfillsZeroValues(t *testing.T) {
	data := []byte(`// partial config
{
  "storage": "sqlite",
  "board": { "row_height": 48 },
  // comment inside
  "outlook": { "timezone": "Europe/Berlin" }
}`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage != "sqlite" || cfg.Container != DefaultContainer {
		t.Errorf("storage=%q container=%q", cfg.Storage, cfg.Container)
	}
	if cfg.Board.RowHeight != 48 || cfg.Board.DefaultResources != 15 || cfg.Board.MinResizeWidth != 10 {
		t.Errorf("board = %+v", cfg.Board)
	}
	if cfg.Outlook.Timezone != "Europe/Berlin" || cfg.Outlook.ClientID != DefaultClientID {
		t.Errorf("outlook = %+v", cfg.Outlook)
	}
	if cfg.TUI.CellWidthPx != 8 {
		t.Errorf("cell width = %v, want 8", cfg.TUI.CellWidthPx)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown backend", `{"storage": "postgres"}`},
		{"unknown level", `{"log_level": "chatty"}`},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("first run config = %+v", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if string(data) != configTemplate {
		t.Error("written file differs from template")
	}

	again, err := Load(path, nil)
	if err != nil || !reflect.DeepEqual(again, cfg) {
		t.Errorf("reload = %+v, %v", again, err)
	}
}

func TestPathPrecedence(t *testing.T) {
	t.Setenv(EnvConfigPath, "/from/env.json")
	if got, _ := Path("/explicit.json"); got != "/explicit.json" {
		t.Errorf("explicit path ignored: %s", got)
	}
	if got, _ := Path(""); got != "/from/env.json" {
		t.Errorf("env path ignored: %s", got)
	}
}

func TestResolveDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/board"
	if got, _ := cfg.ResolveDataDir(); got != "/srv/board" {
		t.Errorf("ResolveDataDir = %s", got)
	}
}
