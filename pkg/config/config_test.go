package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port is required")
	}
	c.valid = true
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("TEST_CONFIG_NAME", "from-env")
	path := writeFile(t, "name: ${TEST_CONFIG_NAME}\n")

	cfg := testConfig{Port: 8080}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 8080 || !cfg.valid {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	err := Load(path, &testConfig{})
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "port: [\n")
	if err := Load(path, &testConfig{Port: 1}); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := testConfig{Port: 8080}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil || found {
		t.Fatalf("LoadOptional(missing) = %v, %v", found, err)
	}
	if !cfg.valid {
		t.Error("defaults were not validated")
	}

	found, err = LoadOptional(writeFile(t, "port: 9090\n"), &cfg)
	if err != nil || !found || cfg.Port != 9090 {
		t.Errorf("LoadOptional = %v, %v, %+v", found, err, cfg)
	}

	if _, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &testConfig{}); err == nil {
		t.Error("invalid defaults should fail validation")
	}
}
