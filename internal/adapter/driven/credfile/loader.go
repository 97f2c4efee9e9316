// Package credfile implements the CredentialSource port over colon-delimited
// text files on the local filesystem.
package credfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/octa/internal/domain/model"
	"github.com/ericfisherdev/octa/internal/domain/port/driven"
)

// Delimiter separates the username, hash and password fields of a line.
const Delimiter = ":"

// ctxCheckInterval is how many lines are parsed between context checks.
const ctxCheckInterval = 4096

// Compile-time interface satisfaction check.
var _ driven.CredentialSource = (*Loader)(nil)

// Loader reads credential files of the form username:hash[:password].
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load opens path and parses it into a Table.
func (l *Loader) Load(ctx context.Context, path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", driven.ErrFileAccess, path, err)
	}
	defer f.Close()

	table, skipped, err := parse(ctx, f)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read %s: %w", driven.ErrFileAccess, path, err)
	}

	l.logger.Debug("credential file loaded", "path", path, "records", table.Len(), "skipped_lines", skipped)
	return table, nil
}

// List returns the regular files directly inside dir in the order returned by
// the filesystem. Subdirectories are skipped.
func (l *Loader) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", driven.ErrFileAccess, dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			l.logger.Debug("skipping directory in match dir", "path", filepath.Join(dir, e.Name()))
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func parse(ctx context.Context, r io.Reader) (*model.Table, int, error) {
	table := model.NewTable()
	br := bufio.NewReader(r)
	skipped := 0

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, skipped, err
			}
		}

		line, err := br.ReadString('\n')
		if line != "" {
			if rec, ok := ParseLine(line); ok {
				table.Put(rec)
			} else {
				skipped++
			}
		}
		if err == io.EOF {
			return table, skipped, nil
		}
		if err != nil {
			return nil, skipped, err
		}
	}
}

// ParseLine splits a single line into a Record. It reports false when the
// line has fewer than two fields once surrounding whitespace is trimmed.
func ParseLine(line string) (model.Record, bool) {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	if len(parts) < 2 {
		return model.Record{}, false
	}

	rec := model.Record{Username: parts[0], Hash: parts[1]}
	if len(parts) > 2 {
		rec.Password = parts[2]
	}
	return rec, true
}
