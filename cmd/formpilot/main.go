// ABOUTME: CLI entrypoint for the FormPilot conversational form-filling server.
// ABOUTME: Wires config, session store, LLM client, orchestrator driver, and HTTP transport together.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/formpilot/formpilot-ai/config"
	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/metrics"
	"github.com/formpilot/formpilot-ai/orchestrator"
	"github.com/formpilot/formpilot-ai/session"
	"github.com/formpilot/formpilot-ai/web"
)

var version = "dev"

func main() {
	loadDotEnvAuto()

	if setupCfg, isSetup := parseSetupArgs(os.Args[1:]); isSetup {
		os.Exit(runSetup(setupCfg))
	}

	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		printHelp(os.Stderr, version)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("formpilot %s\n", version)
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printHelp(os.Stderr, version)
		return 1
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store := session.NewStore(cfg.SessionTimeout)
	store.Metrics = m

	llmClient := llm.NewOpenAIClient(llm.Config{
		Endpoint: cfg.LLMAPIEndpoint,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModelName,
		Timeout:  cfg.LLMRequestTimeout,
	})

	driver := orchestrator.NewDriver(llmClient)
	driver.Metrics = m
	driver.Events = logTurnEvent

	server := web.NewServer(store, driver, web.Config{
		SchemasDir:         cfg.FormSchemasDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsEnabled:     cfg.MetricsEnabled,
		MetricsGatherer:    reg,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSweeper := make(chan struct{})
	go runSweeper(ctx, store, stopSweeper)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("component=main action=shutdown_signal_received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("component=main action=shutdown_failed err=%v", err)
		}
	}()

	log.Printf("component=main action=listening addr=%s log_level=%s", cfg.Addr(), cfg.LogLevel)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	<-stopSweeper
	return 0
}

// runSweeper periodically evicts expired sessions until ctx is canceled,
// then signals done by closing stopSweeper.
func runSweeper(ctx context.Context, store *session.Store, stopSweeper chan struct{}) {
	defer close(stopSweeper)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted := store.SweepExpired(time.Now())
			if len(deleted) > 0 {
				log.Printf("component=main action=sessions_swept count=%d", len(deleted))
			}
		}
	}
}

// logTurnEvent is the default orchestrator.EventSink: one log line per node
// transition, in the same key=value style as the HTTP request logger.
func logTurnEvent(evt orchestrator.Event) {
	log.Printf("component=orchestrator node=%s session_id=%s detail=%q", evt.Node, evt.SessionID, evt.Detail)
}
