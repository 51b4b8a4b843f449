package services

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"casevault/models"
)

// Category prefix table for standard (non-banking) numbering.
// Banking uses account group numbering (B1.1, B1.2, ...) instead.
var categoryPrefixes = map[string]string{
	models.CategoryRealProperty: "A",
}

// CategoryPrefix returns the numbering prefix for a category
func CategoryPrefix(category string) (string, error) {
	prefix, ok := categoryPrefixes[category]
	if !ok {
		return "", NewValidationError("no numbering prefix for category %q", category)
	}
	return prefix, nil
}

// NextDocumentNumber computes the next number within an account group.
// Existing numbers of the form "{groupNumber}.{n}" contribute their n;
// malformed entries are skipped with a logged inconsistency so that one
// corrupt historical record never blocks numbering. Sequence numbers are
// never reused, even after deletion.
func NextDocumentNumber(groupDocs []models.Document, groupNumber string) string {
	prefix := groupNumber + "."
	max := 0
	for i := range groupDocs {
		number := groupDocs[i].Number()
		if number == "" {
			continue
		}
		if !strings.HasPrefix(number, prefix) {
			log.Printf("[WARNING] Document %d number %q does not belong to group %s, skipping", groupDocs[i].ID, number, groupNumber)
			continue
		}
		n, err := strconv.Atoi(number[len(prefix):])
		if err != nil {
			log.Printf("[WARNING] Skipping malformed document number %q on document %d", number, groupDocs[i].ID)
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, max+1)
}

// NextStandardNumber computes the next number for a non-banking category:
// "{prefix}{max+1}" over all existing numbers matching ^{prefix}(\d+)$.
func NextStandardNumber(existingDocs []models.Document, prefix string) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	max := 0
	for i := range existingDocs {
		number := existingDocs[i].Number()
		if number == "" {
			continue
		}
		matches := pattern.FindStringSubmatch(number)
		if matches == nil {
			continue
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			log.Printf("[WARNING] Skipping malformed document number %q on document %d", number, existingDocs[i].ID)
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, max+1)
}

// Known institution abbreviations for display names. Matching is substring
// based so "Westpac Banking Corporation" still resolves to WBC.
var bankAbbreviations = []struct {
	keyword string
	abbrev  string
}{
	{"westpac", "WBC"},
	{"commonwealth", "CBA"},
	{"anz", "ANZ"},
	{"national australia", "NAB"},
	{"nab", "NAB"},
	{"macquarie", "MQG"},
	{"bendigo", "BEN"},
	{"suncorp", "SUN"},
	{"ing", "ING"},
	{"st george", "STG"},
	{"st. george", "STG"},
}

// BankAbbreviation returns a short display abbreviation for an institution.
// Unknown institutions fall back to the uppercased first word.
func BankAbbreviation(institution string) string {
	trimmed := strings.TrimSpace(institution)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, b := range bankAbbreviations {
		if strings.Contains(lower, b.keyword) {
			return b.abbrev
		}
	}
	first := strings.Fields(trimmed)[0]
	return strings.ToUpper(first)
}

// last4 returns the last four characters of an account number
func last4(accountNumber string) string {
	digits := strings.TrimSpace(accountNumber)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// DisplayName derives the presentation name for a document:
// banking "{number} {bankAbbrev} {last4OfAccount}", other
// "{number} {originalFilenameWithoutExtension}". Presentation only,
// never part of the numbering invariant.
func DisplayName(doc *models.Document) string {
	number := doc.Number()
	if doc.IsBanking() {
		parts := []string{number}
		if abbrev := BankAbbreviation(doc.Institution()); abbrev != "" {
			parts = append(parts, abbrev)
		}
		if doc.AccountNumber != nil {
			if tail := last4(*doc.AccountNumber); tail != "" {
				parts = append(parts, tail)
			}
		}
		return strings.Join(parts, " ")
	}

	base := strings.TrimSuffix(doc.FileOriginalName, filepath.Ext(doc.FileOriginalName))
	return strings.TrimSpace(number + " " + base)
}

// CompareDocumentNumbers orders document numbers numeric-aware so that
// A2 sorts before A10 and B1.2 before B1.10. Returns -1, 0 or 1.
func CompareDocumentNumbers(a, b string) int {
	segA := numberSegments(a)
	segB := numberSegments(b)

	for i := 0; i < len(segA) && i < len(segB); i++ {
		if segA[i] == segB[i] {
			continue
		}
		na, errA := strconv.Atoi(segA[i])
		nb, errB := strconv.Atoi(segB[i])
		if errA == nil && errB == nil {
			if na < nb {
				return -1
			}
			return 1
		}
		if segA[i] < segB[i] {
			return -1
		}
		return 1
	}

	switch {
	case len(segA) < len(segB):
		return -1
	case len(segA) > len(segB):
		return 1
	}
	return 0
}

// numberSegments splits a document number into alternating letter and digit
// runs, with dots as separators: "B1.10" -> ["B", "1", "10"].
func numberSegments(number string) []string {
	var segments []string
	var current strings.Builder
	var currentDigit bool

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for _, r := range number {
		if r == '.' {
			flush()
			continue
		}
		isDigit := r >= '0' && r <= '9'
		if current.Len() > 0 && isDigit != currentDigit {
			flush()
		}
		currentDigit = isDigit
		current.WriteRune(r)
	}
	flush()
	return segments
}
