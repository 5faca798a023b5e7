package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jshah-ind/travelbot/internal/infrastructure/config"
	"github.com/jshah-ind/travelbot/internal/infrastructure/container"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Reads one turn per line as "owner|query" (or just "query" for the default
// owner) and prints the merged filters for that owner.
func main() {
	chain := flag.String("chain", "keyword_directory,keyword", "comma separated extraction chain")
	owner := flag.String("owner", "cli", "owner key for lines without one")
	timeout := flag.Duration("timeout", 15*time.Second, "per-turn timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg.ContextBackend = "memory"
	cfg.PostgresURI = ""
	cfg.MongoURI = ""
	cfg.ExtractionChain = strings.Split(*chain, ",")

	log := logger.NewLoggerWithLevel("warn")
	defer log.Sync()

	ctx := context.Background()
	app, err := container.New(ctx, cfg, log, metrics.NewMetricsWithRegisterer("travelbot", prometheus.NewRegistry()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build resolver: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(ctx)

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, query := *owner, line
		if i := strings.Index(line, "|"); i >= 0 {
			key, query = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
		}

		turnCtx, cancel := context.WithTimeout(ctx, *timeout)
		filters, err := app.Resolver.ResolveAndMerge(turnCtx, key, query)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", key, err)
			continue
		}
		enc.Encode(map[string]interface{}{
			"owner":   key,
			"query":   query,
			"filters": filters,
		})
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}
}
