package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/maorga/beacon"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "send":
		err = sendCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("beacon %s: %v", cmd, err)
	}
}

func loadPipelineConfig(cfgPath, envPath string) (*beacon.Config, error) {
	if cfgPath != "" {
		return beacon.LoadConfig(cfgPath)
	}
	return beacon.ConfigFromEnv(envPath)
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML configuration (default: environment)")
	envPath := fs.String("env", "", "Path to .env file with GA4 credentials")
	flushTimeout := fs.Duration("flush-timeout", 5*time.Second, "Shutdown flush budget")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadPipelineConfig(*cfgPath, *envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p, err := beacon.New(cfg)
	if err != nil {
		return err
	}
	defer p.Shutdown(*flushTimeout)

	if !p.Enabled() {
		fmt.Fprintln(os.Stderr, "telemetry disabled (missing credentials); events will be discarded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One event per stdin line: "name key=value key=value ...".
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			p.Track(fields[0], parseParams(fields[1:]))
		}
	}
}

func sendCommand(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML configuration (default: environment)")
	envPath := fs.String("env", "", "Path to .env file with GA4 credentials")
	name := fs.String("event", "", "Event name to send")
	rawParams := fs.String("params", "", "Comma-separated key=value event parameters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-event is required")
	}

	cfg, err := loadPipelineConfig(*cfgPath, *envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p, err := beacon.New(cfg)
	if err != nil {
		return err
	}
	if !p.Enabled() {
		return fmt.Errorf("telemetry disabled: missing credentials")
	}

	var pairs []string
	if *rawParams != "" {
		pairs = strings.Split(*rawParams, ",")
	}
	p.Track(*name, parseParams(pairs))
	p.Shutdown(5 * time.Second)
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./beacon.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := beacon.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if !cfg.CollectorConfigured() {
		fmt.Printf("config %s is valid but has no credentials: pipeline would run disabled\n", *cfgPath)
		return nil
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9090/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"beacon_events_enqueued_total":   0,
		"beacon_events_delivered_total":  0,
		"beacon_events_dropped_total":    0,
		"beacon_deliveries_failed_total": 0,
		"beacon_queue_length":            0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] enqueued=%.0f delivered=%.0f dropped=%.0f failed=%.0f queue=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["beacon_events_enqueued_total"],
		targets["beacon_events_delivered_total"],
		targets["beacon_events_dropped_total"],
		targets["beacon_deliveries_failed_total"],
		targets["beacon_queue_length"],
	)
	return nil
}

// parseParams turns key=value pairs into event parameters, preferring the
// narrowest scalar type that fits.
func parseParams(pairs []string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		switch {
		case value == "true" || value == "false":
			params[key] = value == "true"
		default:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				params[key] = n
			} else if f, err := strconv.ParseFloat(value, 64); err == nil {
				params[key] = f
			} else {
				params[key] = value
			}
		}
	}
	return params
}

func printUsage() {
	fmt.Printf(`Beacon CLI

Usage:
  beacon <command> [flags]

Commands:
  run        Track events read from stdin ("name key=value ...") until EOF or SIGINT
  send       Track a single event and flush
  validate   Load and validate a config file without starting the pipeline
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  beacon run -env .env
  beacon send -env .env -event app_opened -params version=1.0.0
  beacon validate -config ./beacon.yaml
  beacon stats -url http://localhost:9090/metrics -interval 1s
`)
}
