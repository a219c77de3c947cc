// ABOUTME: Rarity conversions between wiki text, decimal probability, and percent
// ABOUTME: Handles Always/Never, qualitative bands, and K x N/D fraction patterns

package markup

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Qualitative rarity bands map to fixed approximate percentage ranges.
var rarityBands = map[string]string{
	"always":    "100%",
	"common":    "2-10%",
	"uncommon":  "0.5-2%",
	"rare":      "0.1-0.5%",
	"very rare": "<0.1%",
}

// fractionPattern matches N/D optionally prefixed by a K x multiplier,
// with thousands separators tolerated in every number.
var fractionPattern = regexp.MustCompile(`(?:(\d[\d,]*)\s*[x×]\s*)?(\d[\d,]*(?:\.\d+)?)\s*/\s*(\d[\d,]*(?:\.\d+)?)`)

var fractionPrinter = message.NewPrinter(language.English)

// Percent converts a raw rarity string to a display percentage. Returns
// false for unrecognized formats; callers must treat that as absent, not
// zero.
func Percent(raw string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if norm == "" {
		return "", false
	}
	if band, ok := rarityBands[norm]; ok {
		return band, true
	}

	p, ok := parseFraction(raw)
	if !ok {
		return "", false
	}
	pct := p * 100

	// Smaller values get more decimal places so rare drops stay legible.
	switch {
	case pct >= 1:
		return fmt.Sprintf("%.2f%%", pct), true
	case pct >= 0.01:
		return fmt.Sprintf("%.3f%%", pct), true
	default:
		return fmt.Sprintf("%.4f%%", pct), true
	}
}

// Decimal converts a raw rarity string to a probability in [0,1]. Only
// "Always" and fraction forms are convertible; qualitative bands are ranges,
// not points, and report false.
func Decimal(raw string) (float64, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if norm == "always" {
		return 1, true
	}
	if norm == "never" {
		return 0, true
	}
	return parseFraction(raw)
}

// Fraction renders a decimal probability the way drop tables write odds:
// "Always" at or above certainty, "Never" at or below zero, otherwise
// 1/round(1/p) with thousands separators.
func Fraction(p float64) string {
	if p >= 1 {
		return "Always"
	}
	if p <= 0 {
		return "Never"
	}
	denom := int64(math.Round(1 / p))
	return fractionPrinter.Sprintf("1/%d", denom)
}

// parseFraction extracts the first K x N/D or N/D pattern in raw and
// computes K*N/D.
func parseFraction(raw string) (float64, bool) {
	m := fractionPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}

	mult := 1.0
	if m[1] != "" {
		k, err := strconv.ParseFloat(stripCommas(m[1]), 64)
		if err != nil {
			return 0, false
		}
		mult = k
	}
	num, err := strconv.ParseFloat(stripCommas(m[2]), 64)
	if err != nil {
		return 0, false
	}
	den, err := strconv.ParseFloat(stripCommas(m[3]), 64)
	if err != nil || den <= 0 {
		return 0, false
	}
	return mult * num / den, true
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
