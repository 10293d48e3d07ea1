package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Validate loads the definition and writes a validation report to out.
// A load failure is returned as an invalid report, not as an error.
func Validate(ctx context.Context, loader ports.ConfigLoader, out io.Writer) *validator.Report {
	cfg, err := loader.Load(ctx)
	if err != nil {
		report := &validator.Report{Err: err}
		PrintReport(out, nil, report)
		return report
	}

	report := validator.ValidateGraph(cfg)
	PrintReport(out, cfg, report)
	return report
}

// PrintReport writes report in the CLI layout. cfg may be nil.
func PrintReport(out io.Writer, cfg *domain.Config, report *validator.Report) {
	if !report.OK() {
		fmt.Fprintf(out, "Definition is invalid: %v\n", report.Err)
		return
	}
	fmt.Fprintf(out, "Definition is valid: %d states, initial '%s'.\n", len(cfg.States), report.Initial)
	for _, f := range report.Findings {
		fmt.Fprintf(out, "warning: %s\n", f)
	}
}

// WatchValidate validates once, then again after every change the loader
// reports, until ctx is done.
func WatchValidate(ctx context.Context, loader ports.ConfigLoader, out io.Writer, logger *slog.Logger) error {
	watchable, ok := loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("%T cannot be watched", loader)
	}

	changes, err := watchable.Watch(ctx)
	if err != nil {
		return err
	}

	Validate(ctx, loader, out)
	printSystemMessage(out, "Watching for changes...")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			logger.Info("definition changed, validating")
			Validate(ctx, loader, out)
		}
	}
}
