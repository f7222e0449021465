// Command analyze runs a single hospital coverage analysis and prints the
// result. It queries the same Overpass and Nominatim endpoints as the service
// and reads their settings from the same environment variables. The report
// goes to stdout and logs go to stderr.
//
// Usage:
//
//	go run ./cmd/analyze -lat 40.4168 -lon -3.7038
//	go run ./cmd/analyze -address "Puerta del Sol, Madrid" -format html
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/hospital-coverage/internal/adapter/nominatim"
	"github.com/couchcryptid/hospital-coverage/internal/adapter/overpass"
	"github.com/couchcryptid/hospital-coverage/internal/config"
	"github.com/couchcryptid/hospital-coverage/internal/coverage"
	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
	"github.com/couchcryptid/hospital-coverage/internal/render"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lat := fs.Float64("lat", math.NaN(), "latitude of the point to analyze")
	lon := fs.Float64("lon", math.NaN(), "longitude of the point to analyze")
	address := fs.String("address", "", "address to geocode and analyze instead of -lat/-lon")
	format := fs.String("format", "text", "output format: text or html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *format != "text" && *format != "html" {
		fs.Usage()
		return fmt.Errorf("unknown -format %q", *format)
	}
	hasPoint := !math.IsNaN(*lat) && !math.IsNaN(*lon)
	if hasPoint == (*address != "") {
		fs.Usage()
		return errors.New("provide either -lat and -lon or -address")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	// Nothing scrapes a one-shot run.
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	finder := overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, cfg.OverpassRate, metrics, logger)
	geocoder := nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, metrics, logger)
	analyzer := coverage.NewAnalyzer(finder, logger, metrics, coverage.WithGeocoder(geocoder))

	var result domain.CoverageResult
	if hasPoint {
		result, err = analyzer.Analyze(ctx, nil, domain.Point{Lat: *lat, Lon: *lon})
	} else {
		result, err = analyzer.AnalyzeAddress(ctx, nil, *address)
	}
	if errors.Is(err, domain.ErrNoResults) {
		return nil
	}
	if err != nil {
		return err
	}

	return write(stdout, *format, result)
}

// newLogger mirrors the service logger settings but writes to w, keeping
// stdout for the report.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func write(w io.Writer, format string, result domain.CoverageResult) error {
	if format == "html" {
		return render.HTML(w, result)
	}
	_, err := fmt.Fprint(w, render.Text(result))
	return err
}
