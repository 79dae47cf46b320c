package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attributes that stay in the structural signature. Everything else (ids,
// data-* reactids, timestamps, CSS-in-JS class hashes) churns on every render
// and would defeat the cache.
var stableAttrs = map[string]bool{
	"type":        true,
	"name":        true,
	"placeholder": true,
	"required":    true,
	"multiple":    true,
	"accept":      true,
	"role":        true,
	"for":         true,
}

// structuralTags are the elements that define a form's shape.
var structuralTags = map[string]bool{
	"form": true, "input": true, "select": true, "textarea": true,
	"button": true, "label": true, "fieldset": true, "legend": true,
	"option": true,
}

// ComputeFormHash reduces rendered markup to a stable structural signature
// and hashes it. Cosmetic re-renders keep the hash; adding, removing or
// retyping a field changes it.
func ComputeFormHash(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var tokens []string
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		tag := strings.ToLower(node.Data)
		if !structuralTags[tag] {
			return
		}

		parts := []string{tag}
		var attrs []string
		for _, attr := range node.Attr {
			key := strings.ToLower(attr.Key)
			if !stableAttrs[key] {
				continue
			}
			if looksVolatile(attr.Val) {
				continue
			}
			attrs = append(attrs, key+"="+strings.ToLower(strings.TrimSpace(attr.Val)))
		}
		sort.Strings(attrs)
		parts = append(parts, attrs...)

		// Label and button text is structure: it is what a human reads to
		// know which field is which.
		if tag == "label" || tag == "button" || tag == "legend" {
			text := strings.Join(strings.Fields(sel.Text()), " ")
			if text != "" {
				parts = append(parts, "text="+strings.ToLower(text))
			}
		}

		tokens = append(tokens, strings.Join(parts, "|"))
	})

	sum := sha256.Sum256([]byte(strings.Join(tokens, "\n")))
	return hex.EncodeToString(sum[:]), nil
}

// looksVolatile flags attribute values that are machine-generated per render:
// long digit runs (timestamps, sequence ids) or uuid-ish fragments.
func looksVolatile(value string) bool {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
			if digits >= 6 {
				return true
			}
		} else {
			digits = 0
		}
	}
	return strings.Count(value, "-") >= 4 && len(value) >= 30
}
