// ABOUTME: Validates setup subcommand parsing, key collection, and .env writing.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSetupArgs_detectsSetupSubcommand(t *testing.T) {
	cfg, ok := parseSetupArgs([]string{"setup", "-env-file", "custom.env"})
	if !ok {
		t.Fatal("expected setup subcommand to be detected")
	}
	if cfg.envFile != "custom.env" {
		t.Errorf("envFile = %q", cfg.envFile)
	}
}

func TestParseSetupArgs_ignoresOtherArgs(t *testing.T) {
	_, ok := parseSetupArgs([]string{"-version"})
	if ok {
		t.Fatal("did not expect setup subcommand to be detected")
	}
}

func TestRunSetupWithIO_collectsAndWritesEnvFile(t *testing.T) {
	os.Unsetenv("LLM_API_ENDPOINT")
	os.Unsetenv("LLM_API_KEY")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	in := strings.NewReader("https://example.com/v1\nsk-test-123\n")
	var out bytes.Buffer

	code := runSetupWithIO(setupConfig{envFile: envPath}, in, &out)
	if code != 0 {
		t.Fatalf("exit code = %d, output = %s", code, out.String())
	}

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "LLM_API_ENDPOINT=https://example.com/v1") {
		t.Errorf("missing endpoint line, got %q", content)
	}
	if !strings.Contains(content, "LLM_API_KEY=sk-test-123") {
		t.Errorf("missing key line, got %q", content)
	}
}

func TestWriteEnvFile_updatesExistingKeyInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LLM_API_KEY=old\nOTHER_VAR=keep\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := writeEnvFile(path, map[string]string{"LLM_API_KEY": "new"}); err != nil {
		t.Fatalf("writeEnvFile: %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "LLM_API_KEY=new") {
		t.Errorf("key not updated, got %q", content)
	}
	if !strings.Contains(content, "OTHER_VAR=keep") {
		t.Errorf("unrelated line dropped, got %q", content)
	}
	if strings.Contains(content, "LLM_API_KEY=old") {
		t.Errorf("old value not replaced, got %q", content)
	}
}

func TestWriteEnvFile_noopOnEmptyValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := writeEnvFile(path, nil); err != nil {
		t.Fatalf("writeEnvFile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file to be created")
	}
}
