package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/notes/internal/preview"
	pkgconfig "github.com/starford/notes/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestFullConfig_PreviewValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Preview.MaxPreviewItemsList = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch preview error")
	}
}

func TestTrashConfig(t *testing.T) {
	cfg := TrashConfig{AutoDeleteAfter: 24 * time.Hour, PurgeInterval: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("zero purge interval should fail")
	}
	cfg.PurgeInterval = time.Minute
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid trash config: %v", err)
	}
}

func TestRateLimitConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     RateLimitConfig
		wantErr bool
		enabled bool
	}{
		{"disabled", RateLimitConfig{}, false, false},
		{"enabled", RateLimitConfig{RequestsPerSecond: 5, Burst: 10}, false, true},
		{"missing burst", RateLimitConfig{RequestsPerSecond: 5}, true, true},
		{"negative rate", RateLimitConfig{RequestsPerSecond: -1}, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.cfg.Enabled() != tc.enabled {
				t.Errorf("Enabled() = %v, want %v", tc.cfg.Enabled(), tc.enabled)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("NOTES_TOKEN", "s3cret")
	data := "app:\n  http:\n    port: 9090\n  append_id_to_title: true\nauth:\n  mode: token\n  token: ${NOTES_TOKEN}\n" +
		"trash:\n  auto_delete_after: 48h\npreview:\n  layout: grid\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || !cfg.App.AppendIDToTitle {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Trash.AutoDeleteAfter != 48*time.Hour || cfg.Trash.PurgeInterval != time.Hour {
		t.Errorf("trash = %+v", cfg.Trash)
	}
	if cfg.Preview.Layout != preview.LayoutGrid || cfg.Preview.MaxPreviewItemsList != 5 {
		t.Errorf("preview = %+v", cfg.Preview)
	}
}
