// Package reportfs implements the ReportWriter port on the local filesystem,
// writing Markdown reports (and optional HTML copies) under an output root.
package reportfs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

const (
	perListDir     = "per-list"
	perBaseFileDir = "per-basefile"
	reportExt      = ".txt"
	htmlExt        = ".html"
)

// Compile-time interface satisfaction check.
var _ driven.ReportWriter = (*Writer)(nil)

// Writer persists reports as:
//
//	<root>/<kind>/per-list/<base>_vs_<source>_<kind>.txt
//	<root>/<kind>/per-basefile/<base>_all_<kind>.txt
//
// Every file is replaced atomically.
type Writer struct {
	root   string
	html   bool
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at root. When htmlExport is set, every
// report also gets a sanitized .html copy beside it.
func NewWriter(root string, htmlExport bool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{root: root, html: htmlExport, logger: logger}
}

// Prepare creates the report directory tree.
func (w *Writer) Prepare() error {
	for _, kind := range []model.ReportKind{model.ReportMatches, model.ReportMismatches} {
		for _, sub := range []string{perListDir, perBaseFileDir} {
			dir := filepath.Join(w.root, string(kind), sub)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("%w: create %s: %w", driven.ErrOutputWrite, dir, err)
			}
		}
	}
	return nil
}

// PairPath returns the report path for one base/source pair.
func (w *Writer) PairPath(base, source string, kind model.ReportKind) string {
	name := fmt.Sprintf("%s_vs_%s_%s%s", base, source, kind, reportExt)
	return filepath.Join(w.root, string(kind), perListDir, name)
}

// AggregatePath returns the report path for a base's aggregated report.
func (w *Writer) AggregatePath(base string, kind model.ReportKind) string {
	name := fmt.Sprintf("%s_all_%s%s", base, kind, reportExt)
	return filepath.Join(w.root, string(kind), perBaseFileDir, name)
}

// WritePair writes the report of one base/source pair.
func (w *Writer) WritePair(base, source string, kind model.ReportKind, body string) error {
	return w.write(w.PairPath(base, source, kind), pairHeading(base, source, kind), body)
}

// WriteAggregate writes the aggregated report of one base.
func (w *Writer) WriteAggregate(base string, kind model.ReportKind, body string) error {
	return w.write(w.AggregatePath(base, kind), aggregateHeading(base, kind), body)
}

func (w *Writer) write(path, heading, body string) error {
	doc := "# " + heading + "\n\n" + body

	if err := atomic.WriteFile(path, strings.NewReader(doc)); err != nil {
		return fmt.Errorf("%w: %s: %w", driven.ErrOutputWrite, path, err)
	}
	w.logger.Debug("report written", "path", path, "bytes", len(doc))

	if !w.html {
		return nil
	}

	htmlPath := strings.TrimSuffix(path, reportExt) + htmlExt
	page, err := reportHTML(heading, doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", driven.ErrOutputWrite, htmlPath, err)
	}
	if err := atomic.WriteFile(htmlPath, strings.NewReader(page)); err != nil {
		return fmt.Errorf("%w: %s: %w", driven.ErrOutputWrite, htmlPath, err)
	}
	return nil
}

func pairHeading(base, source string, kind model.ReportKind) string {
	switch kind {
	case model.ReportMismatches:
		return fmt.Sprintf("Mismatches for %s vs %s", base, source)
	default:
		return fmt.Sprintf("Matches found in %s vs %s", base, source)
	}
}

func aggregateHeading(base string, kind model.ReportKind) string {
	switch kind {
	case model.ReportMismatches:
		return fmt.Sprintf("Mismatches for %s vs all sources", base)
	default:
		return fmt.Sprintf("Matches found in %s vs all sources", base)
	}
}
