package extract

import (
	"context"
	"strings"

	"github.com/propledger/propledger/internal/domain/categorize"
	"github.com/propledger/propledger/internal/domain/extract/pdftext"
	"github.com/propledger/propledger/internal/domain/extract/recognize"
)

// utilityTypeSignals resolve a bill's utility type in fixed precedence. A
// water bill naming an electricity retailer is an electricity bill: the
// specific retailer and tariff words outrank generic commodity words, which
// is why the loose "water"/"gas" sweep runs dead last.
var utilityTypeSignals = []struct {
	keywords []string
	utility  string
}{
	{[]string{"kwh", "electricity charge", "energy charge", "ausgrid", "agl",
		"origin energy", "simply energy", "alinta energy"}, categorize.CatElectricity},
	{[]string{"water use", "water service", "sewerage charge", "sydney water",
		"icon water", "water consumption", "water usage"}, categorize.CatWater},
	{[]string{"natural gas", "gas usage", "gas service charge", "jemena",
		"gas meter"}, categorize.CatGas},
	{[]string{"internet", "broadband", "nbn service", "data usage", "telstra",
		"optus", "iinet", "aussie broadband"}, categorize.CatInternet},
}

func (e *Extractor) extractUtility(ctx context.Context, doc *pdftext.Document) *Result {
	text := doc.Text
	lower := strings.ToLower(text)

	result := &Result{
		DocType: DocUtility,
		Source:  SourcePattern,
		Utility: &UtilityFacts{UtilityType: categorize.CatMiscellaneous},
	}

	if p, ok := recognize.DetectPeriod(text); ok {
		result.Period = &p
	}
	result.Address = recognize.DetectAddress(text)

	for _, sig := range utilityTypeSignals {
		if containsAny(lower, sig.keywords) {
			result.Utility.UtilityType = sig.utility
			break
		}
	}
	if result.Utility.UtilityType == categorize.CatMiscellaneous {
		switch {
		case strings.Contains(lower, "water"):
			result.Utility.UtilityType = categorize.CatWater
		case strings.Contains(lower, "gas"):
			result.Utility.UtilityType = categorize.CatGas
		}
	}

	// Ambiguous bills go through the classifier chain, which may in turn
	// reach the delegated tier.
	if result.Utility.UtilityType == categorize.CatMiscellaneous {
		section, category := e.classifier.Classify(ctx, e.excerpt(text))
		if section == categorize.SectionUtilities {
			result.Utility.UtilityType = category
		}
	}

	result.Utility.Amount = recognize.InvoiceTotal(text)
	if result.Utility.Amount == 0 {
		result.Source = SourceFailed
	}
	return result
}
