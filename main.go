package main

import (
	"call-insights/config"
	"call-insights/dashboard"
	"call-insights/filter"
	"call-insights/formatter"
	"call-insights/kpi"
	"call-insights/metrics"
	"call-insights/models"
	"call-insights/parser"
	"call-insights/server"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var agents, reasons stringList

	// Define flags
	input := flag.String("input", "", "Input call log, .csv or .xlsx (required)")
	format := flag.String("format", "text", "Output format: text|json|csv|xlsx")
	output := flag.String("output", "", "Output file (default stdout; required for xlsx)")
	configPath := flag.String("config", "", "YAML config file")
	flag.Var(&agents, "agent", "Only include this agent (repeatable)")
	flag.Var(&reasons, "reason", "Only include this reason for calling (repeatable)")
	from := flag.String("from", "", "First call date to include, YYYY-MM-DD")
	to := flag.String("to", "", "Last call date to include, YYYY-MM-DD")
	serveAddr := flag.String("serve", "", "Serve dashboards over HTTP on this address (e.g., :8080)")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging, os.Stderr)

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info().Str("addr", *metricsAddr).Msg("metrics server listening")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	// Validate required input flag
	if *input == "" {
		fmt.Println("Error: -input flag is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true, "xlsx": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv, xlsx (got: %s)\n", *format)
		os.Exit(1)
	}
	if *format == "xlsx" && *output == "" && *serveAddr == "" {
		fmt.Println("Error: -output is required for xlsx")
		os.Exit(1)
	}

	spec, err := buildSpec(agents, reasons, *from, *to)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	records, err := parser.ParseFile(*input, parser.Options{
		ColumnRenames:  cfg.Pipeline.ColumnRenames,
		ReasonSynonyms: cfg.Pipeline.ReasonSynonyms,
		Location:       loc,
	})
	if err != nil {
		fmt.Printf("Error parsing file: %v\n", err)
		os.Exit(1)
	}

	svc := dashboard.NewService(records, dashboard.Options{
		Exclusions: kpi.Exclusions{
			OutlierAgent: cfg.Pipeline.OutlierAgent,
			TeamLead:     cfg.Pipeline.TeamLead,
		},
		ThresholdRatio: cfg.Pipeline.ThresholdRatio,
		TopReasons:     cfg.Pipeline.TopReasons,
		ThresholdScope: cfg.Pipeline.ThresholdScope,
	}, logger)

	if *serveAddr != "" {
		if err := serve(*serveAddr, svc, cfg.Server, logger); err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
		return
	}

	d := svc.Dashboard(spec)
	if err := writeDashboard(d, *format, *output); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "call_insights"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error().Err(err).Msg("error pushing to Pushgateway")
		} else {
			logger.Info().Msg("metrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		logger.Info().Msg("process kept alive for metric scraping, press Ctrl+C to exit")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logger.Info().Msg("exiting")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		// but typically batch jobs should use pushgateway or wait
		time.Sleep(100 * time.Millisecond)
	}
}

// buildSpec turns filter flags into a filter spec. Both dates are needed
// for a range.
func buildSpec(agents, reasons []string, from, to string) (filter.Spec, error) {
	spec := filter.Spec{Agents: agents, Reasons: reasons}
	if from == "" && to == "" {
		return spec, nil
	}
	if from == "" || to == "" {
		return spec, fmt.Errorf("-from and -to must be given together")
	}
	start, err := models.ParseDate(from)
	if err != nil {
		return spec, fmt.Errorf("invalid -from: %w", err)
	}
	end, err := models.ParseDate(to)
	if err != nil {
		return spec, fmt.Errorf("invalid -to: %w", err)
	}
	spec.DateRange = &filter.DateRange{Start: start, End: end}
	return spec, nil
}

func writeDashboard(d *models.Dashboard, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	// Output based on format
	var err error
	switch format {
	case "json":
		_, err = fmt.Fprint(w, formatter.FormatJSON(d))
	case "csv":
		_, err = fmt.Fprint(w, formatter.FormatCSV(d))
	case "xlsx":
		err = formatter.WriteXLSX(d, w)
	default: // "text"
		_, err = fmt.Fprint(w, formatter.FormatText(d))
	}
	return err
}

func serve(addr string, svc *dashboard.Service, cfg config.ServerConfig, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.New(svc, logger).Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Int("records", svc.Len()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
