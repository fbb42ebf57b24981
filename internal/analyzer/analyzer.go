// Package analyzer runs statement files through detection and extraction and
// wraps each outcome in a model.FileAnalysis.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shekelsync/shekelsync/internal/accountmap"
	"github.com/shekelsync/shekelsync/internal/delimited"
	"github.com/shekelsync/shekelsync/internal/importer"
	"github.com/shekelsync/shekelsync/internal/logger"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/sheet"
)

// File is an uploaded or scanned statement. The name matters: several
// vendors are recognized partly by it.
type File struct {
	Name string
	Data []byte
}

// ReadFile loads a statement from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// Analyzer detects vendors and extracts transactions.
type Analyzer struct {
	registry *importer.Registry
	mappings accountmap.Store
}

// New returns an analyzer over registry. mappings may be nil, in which case
// no account is suggested.
func New(registry *importer.Registry, mappings accountmap.Store) *Analyzer {
	return &Analyzer{registry: registry, mappings: mappings}
}

// AnalyzeFile never fails: read, parse and extraction errors, and panics,
// are reported in the result's Error field. An unrecognized file is not an
// error; it has a nil Vendor.
func (a *Analyzer) AnalyzeFile(ctx context.Context, f File) (res model.FileAnalysis) {
	log := logger.FromContext(ctx).With().Str("file", f.Name).Logger()

	defer func() {
		if r := recover(); r != nil {
			res = failed(f.Name, fmt.Errorf("analyzing %s: panic: %v", f.Name, r))
			log.Warn().Str("error", res.Error).Msg("analysis failed")
		}
	}()

	content, err := load(f)
	if err != nil {
		log.Warn().Err(err).Msg("analysis failed")
		return failed(f.Name, err)
	}

	res = model.FileAnalysis{FileName: f.Name, Transactions: []model.Transaction{}}

	vendor, identifier := a.registry.Detect(f.Name, content)
	if vendor == nil {
		log.Info().Msg("no vendor matched")
		return res
	}
	info := vendor.Info()
	log = log.With().Str("vendor", info.Kind).Str("identifier", identifier).Logger()
	log.Debug().Msg("vendor detected")

	out, err := vendor.Extract(f.Name, content)
	if err != nil {
		err = fmt.Errorf("extracting %s as %s: %w", f.Name, info.Kind, err)
		log.Warn().Err(err).Msg("analysis failed")
		return failed(f.Name, err)
	}
	if out.Dropped > 0 {
		log.Debug().Int("dropped", out.Dropped).Msg("rows with malformed amounts dropped")
	}

	res.Vendor = &info
	res.Identifier = &identifier
	if out.Transactions != nil {
		res.Transactions = out.Transactions
	}
	res.FinalBalance = out.FinalBalance
	res.BalanceBreakdown = out.BalanceBreakdown
	res.SuggestedAccountID = a.suggest(ctx, identifier)

	ev := log.Info().Int("transactions", len(res.Transactions))
	if res.FinalBalance != nil {
		ev = ev.Str("balance", res.FinalBalance.String())
	}
	ev.Msg("statement analyzed")
	return res
}

// AnalyzeFiles analyzes files concurrently. Results are in input order and a
// failing file never affects the others.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []File) []model.FileAnalysis {
	batch := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("batch", batch).Logger()
	ctx = logger.WithContext(ctx, log)
	log.Debug().Int("files", len(files)).Msg("batch started")

	results := make([]model.FileAnalysis, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = a.AnalyzeFile(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for _, r := range results {
		if r.Failed() {
			failures++
		}
	}
	log.Info().Int("files", len(files)).Int("failed", failures).Msg("batch analyzed")
	return results
}

func (a *Analyzer) suggest(ctx context.Context, identifier string) string {
	if a.mappings == nil || identifier == "" {
		return ""
	}
	id, ok, err := a.mappings.Get(ctx, identifier)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("identifier", identifier).Msg("account mapping lookup failed")
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func load(f File) (importer.Content, error) {
	switch {
	case sheet.IsDelimited(f.Name):
		table, err := delimited.Parse(f.Data)
		if err != nil {
			return importer.Content{}, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		return importer.DelimitedContent(table), nil
	case sheet.IsSpreadsheet(f.Name):
		wb, err := sheet.Open(f.Name, f.Data)
		if err != nil {
			return importer.Content{}, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		return importer.WorkbookContent(wb), nil
	default:
		return importer.Content{}, fmt.Errorf("parsing %s: %w: %q", f.Name, sheet.ErrUnsupportedType, sheet.Ext(f.Name))
	}
}

func failed(name string, err error) model.FileAnalysis {
	return model.FileAnalysis{
		FileName:     name,
		Transactions: []model.Transaction{},
		Error:        err.Error(),
	}
}
