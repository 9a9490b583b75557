package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "encore.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[performer]
org_id = "org-test"
name = "DJ Test"

[file_source]
enabled = true
path = %q
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), filepath.Join(base, "now_playing.txt"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "encore") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output should mention target path: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config to exist: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestRequestsAddAndList(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "requests", "add",
		"--artist", "Drake", "--title", "Hotline Bling", "--phone", "+15550001111")
	if err != nil {
		t.Fatalf("requests add: %v", err)
	}
	if !strings.Contains(out, "Hotline Bling") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out, err = runCommand(t, "--config", configPath, "requests", "list")
	if err != nil {
		t.Fatalf("requests list: %v", err)
	}
	if !strings.Contains(out, "Hotline Bling") || !strings.Contains(out, "new") {
		t.Fatalf("unexpected list output: %q", out)
	}

	out, err = runCommand(t, "--config", configPath, "requests", "list", "--status", "played")
	if err != nil {
		t.Fatalf("requests list filtered: %v", err)
	}
	if !strings.Contains(out, "No requests found") {
		t.Fatalf("unexpected filtered output: %q", out)
	}

	if _, err := runCommand(t, "--config", configPath, "requests", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No plays recorded") {
		t.Fatalf("unexpected history output: %q", out)
	}
}
