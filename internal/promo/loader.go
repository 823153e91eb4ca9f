package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"printsociety/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader reads gzipped promo files from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped file holding one JSON promo code per line.
func (l *fileLoader) Load(ctx context.Context, path string) (*Catalog, error) {
	l.logger.Info().Str("file", path).Msg("loading promo file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer file.Close()

	catalog, err := decode(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read promo file")
		return nil, fmt.Errorf("promo file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", catalog.Size()).
		Msg("promo file loaded successfully")

	return catalog, nil
}

// decode reads gzipped JSON lines from r. Blank lines are skipped and a malformed line fails
// the whole source, naming its line number.
func decode(ctx context.Context, r io.Reader) (*Catalog, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	catalog := NewCatalog()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.PromoCode
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if normalise(p.Code) == "" {
			return nil, fmt.Errorf("line %d: empty code", lineNo)
		}
		catalog.Add(p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading promo lines: %w", err)
	}

	return catalog, nil
}
