package main

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/propledger/propledger/internal/domain/address"
	"github.com/propledger/propledger/internal/domain/extract"
	"github.com/propledger/propledger/internal/domain/ledger"
)

// extractAll runs the extractor over every file with a bounded worker pool.
// Files that cannot be read or parsed are logged and skipped; the batch
// carries on.
func (d *Dependencies) extractAll(ctx context.Context, files []string, hint extract.DocType) []*extract.Result {
	workers := d.Config.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	out := make(chan *extract.Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				data, err := os.ReadFile(path)
				if err != nil {
					d.Logger.Error("failed to read document",
						slog.String("path", path), slog.Any("error", err))
					continue
				}
				result, err := d.Extractor.Extract(ctx, data, path, hint)
				if err != nil {
					d.Logger.Error("failed to extract document",
						slog.String("path", path), slog.Any("error", err))
					continue
				}
				out <- result
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []*extract.Result
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})
	return results
}

// filterByAddress drops documents that definitively belong to a different
// property. Verify-tier and unknown results stay in the batch but are logged
// so the operator can review them.
func (d *Dependencies) filterByAddress(results []*extract.Result, cfg ledger.PropertyConfig) []*extract.Result {
	reference := strings.TrimSpace(cfg.Address + " " + cfg.Postcode)
	if strings.TrimSpace(cfg.Address) == "" {
		return results
	}

	kept := results[:0]
	for _, r := range results {
		m := address.Match(r.Address, reference)
		switch m.Status {
		case address.StatusMismatch:
			d.Logger.Warn("document excluded, address mismatch",
				slog.String("filename", r.Filename),
				slog.String("extracted", r.Address),
				slog.String("reason", m.Reason))
			continue
		case address.StatusVerify, address.StatusUnknown:
			d.Logger.Info("document address needs review",
				slog.String("filename", r.Filename),
				slog.String("status", string(m.Status)),
				slog.Float64("score", m.Score),
				slog.String("reason", m.Reason))
		}
		kept = append(kept, r)
	}
	return kept
}
