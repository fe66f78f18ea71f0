package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/internal/domain/extract/recognize"
	"github.com/propledger/propledger/pkg/money"
)

var gstRe = regexp.MustCompile(`(?i)gst[:\s]+\$?([\d,]+\.?\d*)`)

func (e *Extractor) extractInvoice(ctx context.Context, doc *pdftext.Document) *Result {
	text := doc.Text

	result := &Result{
		DocType: DocInvoice,
		Source:  SourcePattern,
		Invoice: &InvoiceFacts{
			Section:  categorize.SectionOpex,
			Category: categorize.CatMiscellaneous,
		},
	}
	facts := result.Invoice

	if p, ok := recognize.DetectPeriod(text); ok {
		result.Period = &p
	}
	result.Address = recognize.DetectAddress(text)

	if section, category, ok := categorize.MatchInvoice(text); ok {
		facts.Section, facts.Category = section, category
	} else {
		// No invoice rule fired; let the classifier chain (static
		// keywords, then the delegated tier) have a try.
		section, category := e.classifier.Classify(ctx, e.excerpt(text))
		if category != categorize.CatMiscellaneous {
			facts.Section, facts.Category = section, category
		}
	}

	facts.Amount = recognize.InvoiceTotal(text)
	if facts.Amount == 0 {
		result.Source = SourceFailed
	}

	if m := gstRe.FindStringSubmatch(text); m != nil {
		facts.GST, _ = money.ParseAmount(m[1])
	}

	facts.Vendor = vendorLine(text)
	return result
}

// vendorLine guesses the issuer from the first substantial non-numeric line.
func vendorLine(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 3 && (line[0] < '0' || line[0] > '9') {
			return line
		}
	}
	return ""
}
