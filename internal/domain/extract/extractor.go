// Package extract turns property document PDFs into typed extraction results.
// Four extractors cover the known document shapes: rental/ownership
// statements, bank transaction statements, utility bills, and invoices or
// government notices. A dispatcher routes untyped uploads by keyword signals.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/propledger/propledger/internal/domain/delegated"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/pkg/metrics"
)

// Categorizer maps a free-text description to a (section, category) pair.
// Satisfied by the categorize.Classifier chain.
type Categorizer interface {
	Classify(ctx context.Context, description string) (string, string)
}

// Delegate is the delegated text-understanding dependency.
type Delegate interface {
	GenerateJSON(ctx context.Context, purpose, prompt string) delegated.Outcome[json.RawMessage]
}

// Extractor runs the per-type extraction pipelines.
type Extractor struct {
	classifier Categorizer
	delegate   Delegate
	layouts    *LayoutCache
	logger     *slog.Logger
	// maxExcerpt bounds how much document text delegated calls receive.
	maxExcerpt int
}

// New wires an extractor. delegate may be nil; layouts may not.
func New(classifier Categorizer, delegate Delegate, layouts *LayoutCache, maxExcerpt int, logger *slog.Logger) *Extractor {
	if maxExcerpt <= 0 {
		maxExcerpt = 3000
	}
	return &Extractor{
		classifier: classifier,
		delegate:   delegate,
		layouts:    layouts,
		logger:     logger,
		maxExcerpt: maxExcerpt,
	}
}

// Extract parses one PDF. hint pins the document type; DocAuto (or empty)
// lets the dispatcher decide. The only error paths are unreadable PDFs;
// recognition misses degrade to zero values and a Source tag, never errors.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string, hint DocType) (*Result, error) {
	doc, err := pdftext.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	docType := hint
	if docType == "" || docType == DocAuto {
		docType = Detect(doc.Text)
	}

	var result *Result
	switch docType {
	case DocRental:
		result = e.extractRental(ctx, doc)
	case DocBank:
		result = e.extractBank(ctx, doc)
	case DocUtility:
		result = e.extractUtility(ctx, doc)
	case DocInvoice:
		result = e.extractInvoice(ctx, doc)
	default:
		return nil, fmt.Errorf("extract %s: unknown document type %q", filename, docType)
	}

	result.ID = uuid.New()
	result.Filename = filename
	metrics.ExtractionsTotal.WithLabelValues(string(result.DocType), string(result.Source)).Inc()

	e.logger.Info("document extracted",
		slog.String("filename", filename),
		slog.String("doc_type", string(result.DocType)),
		slog.String("source", string(result.Source)))
	return result, nil
}

// excerpt bounds text sent to the delegated service.
func (e *Extractor) excerpt(text string) string {
	if len(text) <= e.maxExcerpt {
		return text
	}
	return text[:e.maxExcerpt]
}

var (
	rentalSignals = []string{"money in", "money out", "ownership statement",
		"eft to owner", "disbursement to owner", "landlord statement"}

	ratesSignals = []string{"council rates", "rates notice", "rate notice",
		"municipal rates", "local government rates",
		"government rates and charges", "general grv",
		"grv valuation", "land tax assessment",
		"notice of assessment", "revenue nsw", "state revenue"}

	strataSignals = []string{"strata levy", "body corporate levy",
		"owners corporation", "administrative fund levy",
		"sinking fund levy", "capital works levy"}

	invoiceMarkers = []string{"tax invoice", "invoice no", "invoice number",
		"abn:", "australian business number"}
	invoiceAmountMarkers = []string{"total", "amount due", "amount payable",
		"balance due", "please pay"}

	utilitySignals = []string{"amount due", "amount payable", "kwh", "usage charge",
		"bill amount", "water use", "service charge",
		"electricity charge", "energy charge", "gas charge",
		"broadband", "nbn service", "data usage",
		"total charges", "please pay by"}

	bankSignals = []string{"account number", "bsb", "opening balance",
		"closing balance", "available balance", "statement of account"}
)

// Detect routes untyped text to a document type by keyword signals in fixed
// priority order. Utility runs before bank because both mention account
// numbers; bank is the catch-all default rather than a high-priority match.
func Detect(text string) DocType {
	lower := strings.ToLower(text)

	if containsAny(lower, rentalSignals) {
		return DocRental
	}
	if containsAny(lower, ratesSignals) {
		return DocInvoice
	}
	if containsAny(lower, strataSignals) {
		return DocInvoice
	}
	if containsAny(lower, invoiceMarkers) && containsAny(lower, invoiceAmountMarkers) {
		return DocInvoice
	}
	if containsAny(lower, utilitySignals) {
		return DocUtility
	}
	if containsAny(lower, bankSignals) {
		return DocBank
	}
	return DocBank
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
