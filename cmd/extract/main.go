// Package main provides a one-shot CLI for the order-intent extraction
// pipeline. It runs the same pipeline the API server exposes, printing the
// result for a single message.
// Usage: mangwale-extract [--output json|text] [--timeout 30s] "tushar se 2 misal mangwao"
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mangwale-nlu/internal/config"
	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/infra/catalog"
	"mangwale-nlu/internal/infra/extractor"
	"mangwale-nlu/internal/infra/modelserve"
	"mangwale-nlu/internal/nlu/intent"
	enrichUC "mangwale-nlu/internal/usecase/enrich"
	extractUC "mangwale-nlu/internal/usecase/extract"
)

func main() {
	var (
		outputFormat string
		timeout      time.Duration
		withCatalog  bool
	)

	flag.StringVar(&outputFormat, "output", "json", "Output format: json or text")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall extraction timeout")
	flag.BoolVar(&withCatalog, "catalog", false, "Enrich cart items via the catalog service")
	flag.Parse()

	text := readText(flag.Args())
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Error: no message text given")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: mangwale-extract [--output json|text] [--catalog] \"<message>\"")
		fmt.Fprintln(os.Stderr, "       echo \"<message>\" | mangwale-extract")
		os.Exit(1)
	}

	_ = godotenv.Load()

	// Logs go to stderr so stdout stays clean for the result.
	logger := initLogger()
	slog.SetDefault(logger)

	svc, err := buildPipeline(logger, withCatalog)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := svc.Extract(ctx, text)
	if err != nil {
		logger.Error("extraction failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "text" {
		outputText(result)
	} else {
		outputJSON(result)
	}
}

// readText joins the remaining arguments, falling back to stdin when none are
// given so the command composes in shell pipelines.
func readText(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}

	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelWarn
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// buildPipeline assembles the extraction service the same way cmd/api does.
func buildPipeline(logger *slog.Logger, withCatalog bool) (*extractUC.Service, error) {
	extractorCfg, err := extractor.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("extractor configuration: %w", err)
	}
	llm, err := extractor.NewFromConfig(extractorCfg)
	if err != nil {
		return nil, fmt.Errorf("extractor provider: %w", err)
	}

	modelCfg, err := modelserve.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("model serving configuration: %w", err)
	}

	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server configuration: %w", err)
	}
	rules := intent.DefaultRules()
	if serverCfg.IntentRulesPath != "" {
		rules, err = intent.LoadRules(serverCfg.IntentRulesPath)
		if err != nil {
			return nil, fmt.Errorf("intent rules %s: %w", serverCfg.IntentRulesPath, err)
		}
	}

	svc := extractUC.NewService(llm, modelserve.NewClassifier(modelCfg), modelserve.NewTagger(modelCfg), intent.New(rules))

	if withCatalog {
		catalogCfg, err := catalog.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("catalog configuration: %w", err)
		}
		client, err := catalog.NewFromConfig(catalogCfg)
		if err != nil {
			return nil, fmt.Errorf("catalog client: %w", err)
		}
		svc.WithEnricher(enrichUC.NewService(client))
		logger.Debug("catalog enrichment enabled", slog.String("base_url", catalogCfg.BaseURL))
	}

	return svc, nil
}

// outputJSON prints the extraction result as indented JSON.
func outputJSON(result *entity.ExtractionResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

// outputText prints the extraction result in human-readable form.
func outputText(result *entity.ExtractionResult) {
	fmt.Printf("Intent:     %s (confidence %.2f, path %s)\n", result.Intent, result.Confidence, result.Path)

	if len(result.Entities) > 0 {
		fmt.Println("Entities:")
		for _, e := range result.Entities {
			fmt.Printf("  %-6s %q [%d:%d] %.2f\n", e.Label, e.Text, e.Start, e.End, e.Confidence)
		}
	}

	if len(result.CartItems) > 0 {
		fmt.Println("Cart:")
		for _, item := range result.CartItems {
			line := fmt.Sprintf("  %dx %s", item.Qty, item.Food)
			if item.Store != "" {
				line += " from " + item.Store
			}
			if item.Price != nil {
				line += fmt.Sprintf(" @ %.2f", *item.Price)
			}
			fmt.Println(line)
		}
	}
}
