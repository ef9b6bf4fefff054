// The report command runs the analysis pipeline once over a listing
// export and writes the full dashboard report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"marketlens/internal/infrastructure"
	"marketlens/internal/services"
)

func main() {
	in := flag.String("in", "", "path to the .xlsx listing export (required)")
	out := flag.String("out", "", "output path for the JSON report (defaults to stdout)")
	topN := flag.Int("top", 0, "ranking length (defaults to 10)")
	level := flag.String("log-level", "warn", "log level: debug|info|warn|error")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: report -in <export.xlsx> [-out report.json]")
		os.Exit(2)
	}

	logger := infrastructure.NewLogger(infrastructure.LoggerOptions{
		Level:  *level,
		Format: "text",
		Output: os.Stderr,
	})
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, *in, *out, *topN); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, in, out string, topN int) error {
	content, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	svc := services.NewSessionService(logger, topN)
	session, err := svc.CreateSession(ctx, filepath.Base(in), content)
	if err != nil {
		return err
	}
	report, err := svc.Report(ctx, session.ID)
	if err != nil {
		return err
	}

	output := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		output = f
	}

	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
