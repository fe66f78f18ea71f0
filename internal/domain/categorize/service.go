// Package categorize turns free-text transaction descriptions into P&L
// section/category pairs. Resolution order: learned keyword rules, the static
// keyword table, then the delegated classifier. Every path terminates in a
// category; classification never returns an error.
package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/propledger/propledger/internal/domain/delegated"
	"github.com/propledger/propledger/pkg/metrics"
)

// Delegate is the slice of the delegated client the classifier needs.
type Delegate interface {
	GenerateJSON(ctx context.Context, purpose, prompt string) delegated.Outcome[json.RawMessage]
}

// Classifier is the category resolution chain.
type Classifier struct {
	engine   *Engine
	store    RuleStore
	delegate Delegate
	logger   *slog.Logger
}

// NewClassifier wires the chain. delegate may be nil, which disables the
// third tier.
func NewClassifier(store RuleStore, delegate Delegate, logger *slog.Logger) *Classifier {
	return &Classifier{
		engine:   NewEngine(store.Rules()),
		store:    store,
		delegate: delegate,
		logger:   logger,
	}
}

// Classify resolves a description to (section, category). Unresolvable
// descriptions land in opex/Miscellaneous, never in an error.
func (c *Classifier) Classify(ctx context.Context, description string) (string, string) {
	if rule, ok := c.engine.Match(description); ok {
		return rule.Section, rule.Category
	}

	if section, category, ok := c.delegateClassify(ctx, description); ok {
		return section, category
	}

	return SectionOpex, CatMiscellaneous
}

// delegatedAnswer is the strict JSON shape the delegated classifier must
// return.
type delegatedAnswer struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
}

func (c *Classifier) delegateClassify(ctx context.Context, description string) (string, string, bool) {
	if c.delegate == nil {
		return "", "", false
	}
	out := c.delegate.GenerateJSON(ctx, "classify", classifyPrompt(description))
	if !out.OK() {
		return "", "", false
	}

	var ans delegatedAnswer
	if err := json.Unmarshal(out.Value, &ans); err != nil {
		c.logger.Warn("delegated classification had wrong shape", slog.Any("error", err))
		return "", "", false
	}

	if !ValidCategory(ans.Category) || ans.Category == CatMiscellaneous {
		c.logger.Warn("delegated classification rejected",
			slog.String("category", ans.Category),
			slog.String("description", description))
		return "", "", false
	}
	section := SectionFor(ans.Category)

	c.learn(ans.Keyword, section, ans.Category, description)
	return section, ans.Category, true
}

// learn mints a keyword rule from a successful delegated classification. A
// keyword that fails its invariants loses the rule, not the classification.
func (c *Classifier) learn(keyword, section, category, description string) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if len(keyword) < 3 || !strings.Contains(strings.ToLower(description), keyword) {
		c.logger.Debug("delegated keyword not learnable", slog.String("keyword", keyword))
		return
	}

	added, err := c.store.Add(keyword, section, category)
	if err != nil {
		c.logger.Warn("failed to persist learned rule",
			slog.String("keyword", keyword), slog.Any("error", err))
		return
	}
	if !added {
		return
	}

	metrics.RulesLearnedTotal.Inc()
	c.logger.Info("learned category rule",
		slog.String("keyword", keyword),
		slog.String("category", category))
	c.engine.Build(c.store.Rules())
}

func classifyPrompt(description string) string {
	categories := []string{
		CatRentalIncome, CatManagementFees, CatLettingFees, CatMaintenance,
		CatCleaning, CatCouncilRates, CatLandTax, CatStrata,
		CatBuildingInsurance, CatAdvertising, CatElectricity, CatWater,
		CatGas, CatInternet, CatMortgageInterest, CatMortgageRepayment,
	}

	return fmt.Sprintf(
		"Classify this Australian rental property bank transaction into a P&L category.\n"+
			"Return ONLY a JSON object, no explanation, no markdown fences.\n"+
			"Keys:\n"+
			"  category - exactly one of: %s\n"+
			"  keyword  - a short lowercase substring of the description that identifies\n"+
			"             this kind of transaction (3+ characters), or null if none\n"+
			"Do not invent categories. If none fits, use null for both keys.\n\n"+
			"Transaction description: %s\n",
		strings.Join(categories, "; "), description)
}
