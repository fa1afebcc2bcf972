// ABOUTME: Help display for the formpilot CLI with usage and environment status.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage, the
// environment variables formpilot reads, and current status for each.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "formpilot %s — conversational form-filling orchestrator\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  formpilot                Start the HTTP server using env-var configuration")
	fmt.Fprintln(w, "  formpilot setup          Interactive setup wizard for LLM credentials")
	fmt.Fprintln(w, "  formpilot -version       Print version and exit")
	fmt.Fprintln(w, "  formpilot -help          Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Required environment:")
	fmt.Fprintf(w, "  LLM_API_ENDPOINT      %s\n", envStatus("LLM_API_ENDPOINT"))
	fmt.Fprintf(w, "  LLM_API_KEY           %s\n", envStatus("LLM_API_KEY"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Optional environment (defaults shown):")
	fmt.Fprintln(w, "  LLM_MODEL_NAME         default")
	fmt.Fprintln(w, "  LLM_REQUEST_TIMEOUT_SEC 300")
	fmt.Fprintln(w, "  SESSION_TIMEOUT_SEC    1800")
	fmt.Fprintln(w, "  CORS_ALLOWED_ORIGINS   *")
	fmt.Fprintln(w, "  BACKEND_HOST           0.0.0.0")
	fmt.Fprintln(w, "  BACKEND_PORT           8000")
	fmt.Fprintln(w, "  FORM_SCHEMAS_DIR       ./schemas")
	fmt.Fprintln(w, "  METRICS_ENABLED        true")
	fmt.Fprintln(w, "  LOG_LEVEL              info")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "A .env file in the working directory (or any parent) is loaded automatically")
	fmt.Fprintln(w, "without overriding variables already set in the process environment.")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
