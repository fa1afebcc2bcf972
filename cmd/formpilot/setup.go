// ABOUTME: Interactive setup wizard for formpilot — collects LLM credentials, writes .env.
// ABOUTME: Follows the same subcommand pattern as the top-level flag set, with its own flag set.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// setupConfig holds configuration for the "formpilot setup" subcommand.
type setupConfig struct {
	envFile string
}

// parseSetupArgs checks whether args starts with the "setup" subcommand and,
// if so, parses setup-specific flags. Returns the config and true if "setup"
// was detected, or a zero value and false otherwise.
func parseSetupArgs(args []string) (setupConfig, bool) {
	if len(args) == 0 || args[0] != "setup" {
		return setupConfig{}, false
	}

	var cfg setupConfig
	fs := flag.NewFlagSet("formpilot setup", flag.ContinueOnError)
	fs.StringVar(&cfg.envFile, "env-file", ".env", "Path to write .env file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: formpilot setup [flags]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Interactive setup wizard — configure the LLM endpoint and get started.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	return cfg, true
}

// runSetup executes the interactive setup wizard using stdin/stdout.
func runSetup(cfg setupConfig) int {
	return runSetupWithIO(cfg, os.Stdin, os.Stdout)
}

// runSetupWithIO executes the setup wizard with injectable I/O for testing.
func runSetupWithIO(cfg setupConfig, r io.Reader, w io.Writer) int {
	fmt.Fprintln(w, "formpilot setup")
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(r)
	collected := map[string]string{}

	endpointSet := os.Getenv("LLM_API_ENDPOINT") != ""
	keySet := os.Getenv("LLM_API_KEY") != ""

	if endpointSet {
		fmt.Fprintln(w, "  LLM_API_ENDPOINT: already set")
	} else {
		fmt.Fprint(w, "  LLM_API_ENDPOINT: ")
		if scanner.Scan() {
			if v := strings.TrimSpace(scanner.Text()); v != "" {
				collected["LLM_API_ENDPOINT"] = v
			}
		}
	}

	if keySet {
		fmt.Fprintln(w, "  LLM_API_KEY: already set")
	} else {
		fmt.Fprint(w, "  LLM_API_KEY: ")
		if scanner.Scan() {
			if v := strings.TrimSpace(scanner.Text()); v != "" {
				collected["LLM_API_KEY"] = v
			}
		}
	}

	if err := writeEnvFile(cfg.envFile, collected); err != nil {
		fmt.Fprintf(w, "Error writing %s: %v\n", cfg.envFile, err)
		return 1
	}

	if len(collected) > 0 {
		fmt.Fprintf(w, "\nWrote %d value(s) to %s\n", len(collected), cfg.envFile)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Quick start:")
	fmt.Fprintln(w, "  formpilot              Start the server")
	fmt.Fprintln(w, "  formpilot -help        See all options")
	fmt.Fprintln(w)

	if !keySet && collected["LLM_API_KEY"] == "" {
		fmt.Fprintln(w, "Warning: LLM_API_KEY is still unset; the server will refuse to start.")
	}

	return 0
}

// writeEnvFile writes collected key/value pairs to a .env file. If the file
// already exists, it updates matching keys in place and appends new ones.
// Existing lines that don't match any collected key are preserved as-is.
// Does nothing if values is empty.
func writeEnvFile(path string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	var existingLines []string
	if data, err := os.ReadFile(path); err == nil {
		existingLines = strings.Split(string(data), "\n")
	}

	written := map[string]bool{}
	var outputLines []string

	for _, line := range existingLines {
		trimmed := strings.TrimSpace(line)
		updated := false
		for key, value := range values {
			lineKey := strings.TrimPrefix(trimmed, "export ")
			if k, _, ok := strings.Cut(lineKey, "="); ok && strings.TrimSpace(k) == key {
				outputLines = append(outputLines, key+"="+value)
				written[key] = true
				updated = true
				break
			}
		}
		if !updated {
			outputLines = append(outputLines, line)
		}
	}

	for key, value := range values {
		if !written[key] {
			outputLines = append(outputLines, key+"="+value)
		}
	}

	for len(outputLines) > 0 && strings.TrimSpace(outputLines[len(outputLines)-1]) == "" {
		outputLines = outputLines[:len(outputLines)-1]
	}

	content := strings.Join(outputLines, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0600)
}
