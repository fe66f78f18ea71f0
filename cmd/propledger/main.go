package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/internal/domain/ledger"
	"github.com/propledger/propledger/pkg/config"
	"github.com/propledger/propledger/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		sessionPath = flag.String("session", "data/session.json", "session file; loaded if present, created otherwise")
		propertyID  = flag.String("property", "", "property identifier to merge documents into (required)")
		propName    = flag.String("name", "", "property display name (set on first use)")
		propAddr    = flag.String("address", "", "reference address for document matching (set on first use)")
		propPost    = flag.String("postcode", "", "reference postcode (set on first use)")
		docType     = flag.String("type", "auto", "document type: auto, rental, bank, utility, invoice")
		workbookOut = flag.String("workbook", "pl_workbook.xlsx", "output workbook path")
		changeLog   = flag.String("changelog", "", "optional change-log CSV path")
	)
	flag.Parse()

	if *propertyID == "" {
		return fmt.Errorf("-property is required")
	}
	files, err := collectFiles(flag.Args())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files given")
	}
	hint, err := parseDocType(*docType)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Observability.MetricsEnabled {
		go func() {
			if err := metrics.Serve(cfg.Observability.MetricsPort); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	ctx := context.Background()
	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}

	session, err := loadOrCreateSession(*sessionPath, logger)
	if err != nil {
		return err
	}
	prop := session.Property(*propertyID)
	applyPropertyFlags(prop, *propName, *propAddr, *propPost)

	results := deps.extractAll(ctx, files, hint)
	for _, r := range results {
		if r.Period == nil {
			logger.Warn("document needs a manually supplied period",
				slog.String("filename", r.Filename),
				slog.String("doc_type", string(r.DocType)))
		}
		if r.Source == extract.SourceFailed {
			logger.Warn("extraction failed, amounts need manual entry",
				slog.String("filename", r.Filename))
		}
	}
	results = deps.filterByAddress(results, prop.Config)

	changes := deps.Merger.Merge(prop.Data, results, session.Mode())
	for _, c := range changes {
		logger.Info("ledger change",
			slog.String("period", c.Period.Key()),
			slog.String("category", c.Category),
			slog.String("status", string(c.Status)),
			slog.Float64("old", c.Old),
			slog.Float64("new", c.New))
	}

	if *changeLog != "" {
		f, err := os.Create(*changeLog)
		if err != nil {
			return fmt.Errorf("create change log: %w", err)
		}
		defer f.Close()
		if err := ledger.WriteChangeLog(f, *propertyID, changes); err != nil {
			return fmt.Errorf("write change log: %w", err)
		}
	}

	if err := session.Save(*sessionPath); err != nil {
		return err
	}
	if err := deps.Renderer.Save(session, *workbookOut); err != nil {
		return err
	}

	logger.Info("run complete",
		slog.Int("documents", len(results)),
		slog.Int("changes", len(changes)),
		slog.String("workbook", *workbookOut))
	return nil
}

func loadOrCreateSession(path string, logger *slog.Logger) (*ledger.Session, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("starting fresh session", slog.String("path", path))
		return ledger.NewSession(), nil
	}
	s, err := ledger.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("restored session",
		slog.String("path", path),
		slog.Int("properties", len(s.Properties)))
	return s, nil
}

func applyPropertyFlags(prop *ledger.Property, name, addr, postcode string) {
	if name != "" {
		prop.Config.Name = name
	}
	if addr != "" {
		prop.Config.Address = addr
	}
	if postcode != "" {
		prop.Config.Postcode = postcode
	}
}

func parseDocType(s string) (extract.DocType, error) {
	switch extract.DocType(strings.ToLower(s)) {
	case extract.DocAuto, "":
		return extract.DocAuto, nil
	case extract.DocRental:
		return extract.DocRental, nil
	case extract.DocBank:
		return extract.DocBank, nil
	case extract.DocUtility:
		return extract.DocUtility, nil
	case extract.DocInvoice:
		return extract.DocInvoice, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

// collectFiles expands directories into the PDFs they contain.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				continue
			}
			files = append(files, filepath.Join(arg, e.Name()))
		}
	}
	return files, nil
}
