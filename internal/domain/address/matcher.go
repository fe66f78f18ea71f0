// Package address compares addresses extracted from documents against the
// configured reference address of each property. Australian postcodes anchor
// the comparison: agreeing postcodes nearly settle it, disagreeing ones are a
// definitive mismatch no matter how similar the rest of the text looks.
package address

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Status is the outcome tier of an address comparison.
type Status string

const (
	// StatusMatch means the document belongs to the property.
	StatusMatch Status = "match"
	// StatusVerify means probably the same property but a human should
	// confirm the street number or unit.
	StatusVerify Status = "verify"
	// StatusMismatch means the document is for a different property.
	StatusMismatch Status = "mismatch"
	// StatusUnknown means one side was empty, which is never evidence of a
	// mismatch.
	StatusUnknown Status = "unknown"
)

// Result carries the tier, the similarity score that produced it, and a short
// human-readable reason.
type Result struct {
	Status Status
	Score  float64
	Reason string
}

var abbreviations = []struct {
	pattern *regexp.Regexp
	full    string
}{
	{regexp.MustCompile(`\bst\b`), "street"},
	{regexp.MustCompile(`\bave\b`), "avenue"},
	{regexp.MustCompile(`\brd\b`), "road"},
	{regexp.MustCompile(`\bdr\b`), "drive"},
	{regexp.MustCompile(`\bpl\b`), "place"},
	{regexp.MustCompile(`\bct\b`), "court"},
	{regexp.MustCompile(`\bcres\b`), "crescent"},
	{regexp.MustCompile(`\bblvd\b`), "boulevard"},
	{regexp.MustCompile(`\bcl\b`), "close"},
	{regexp.MustCompile(`\bcct\b`), "circuit"},
	{regexp.MustCompile(`\bhwy\b`), "highway"},
}

var (
	punctuation = regexp.MustCompile(`[,.]`)
	spaces      = regexp.MustCompile(`\s+`)
	postcodeRe  = regexp.MustCompile(`\b(\d{4})\b`)
	leadingRe   = regexp.MustCompile(`^[\w/]+`)
)

var stateTokens = map[string]struct{}{
	"nsw": {}, "vic": {}, "qld": {}, "wa": {},
	"sa": {}, "tas": {}, "act": {}, "nt": {},
}

// Normalize lowercases an address, expands street-type abbreviations, and
// strips punctuation so "3A Montfort St." and "3a montfort street" compare
// equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range abbreviations {
		s = a.pattern.ReplaceAllString(s, a.full)
	}
	s = punctuation.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Match compares an extracted address against the property's reference
// address.
func Match(extracted, reference string) Result {
	if strings.TrimSpace(extracted) == "" {
		return Result{StatusUnknown, 0, "address not found in document"}
	}
	if strings.TrimSpace(reference) == "" {
		return Result{StatusUnknown, 0, "no reference address configured"}
	}

	ext := Normalize(extracted)
	ref := Normalize(reference)

	extPC := postcodeRe.FindString(ext)
	refPC := postcodeRe.FindString(ref)

	if extPC != "" && refPC != "" {
		if extPC != refPC {
			return Result{StatusMismatch, 0, "different postcode"}
		}

		extNum := leadingRe.FindString(ext)
		refNum := leadingRe.FindString(ref)
		if extNum != "" && extNum == refNum {
			return Result{StatusMatch, 1, "postcode and street number agree"}
		}

		score := similarity(ext, ref)
		if score >= 0.70 {
			return Result{StatusVerify, score, "same suburb, verify street number or unit"}
		}
		return Result{StatusVerify, score, "same postcode, low text similarity"}
	}

	score := similarity(ext, ref)
	extTokens := tokenSet(ext)
	refTokens := tokenSet(ref)

	common := 0
	sameState := false
	for tok := range extTokens {
		if _, ok := refTokens[tok]; !ok {
			continue
		}
		common++
		if _, ok := stateTokens[tok]; ok {
			sameState = true
		}
	}
	commonFrac := float64(common) / float64(max(len(refTokens), 1))

	switch {
	case score >= 0.80 || (sameState && commonFrac >= 0.5):
		return Result{StatusMatch, score, "no postcode, strong text agreement"}
	case score >= 0.50 || commonFrac >= 0.35 || sameState:
		return Result{StatusVerify, score, "no postcode, partial agreement"}
	}
	return Result{StatusMismatch, score, "addresses do not agree"}
}

// similarity is a Levenshtein ratio in [0,1] over the normalized strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
