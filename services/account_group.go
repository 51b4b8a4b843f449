package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"casevault/models"
)

// accountGroupPattern matches group numbers of the form B1, B2, ...
var accountGroupPattern = regexp.MustCompile(`^B(\d+)$`)

// NormalizeHolderName normalizes an account holder name for comparison.
// The stored value keeps the original casing from the first document that
// created the group; only matching is case-insensitive.
func NormalizeHolderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveAccountGroup returns the account group number for candidateHolderName
// given the case's existing banking documents: the existing group if any
// document has a matching normalized holder name and a non-empty group number,
// otherwise the next free group number (B{max+1}).
//
// Pure with respect to its inputs. The caller must re-read the current
// document set under the case lock immediately before committing.
func ResolveAccountGroup(existingBankingDocs []models.Document, candidateHolderName string) (string, error) {
	normalized := NormalizeHolderName(candidateHolderName)
	if normalized == "" {
		return "", NewValidationError("account holder name is required")
	}

	// Join an existing group when the holder already has one
	for i := range existingBankingDocs {
		doc := &existingBankingDocs[i]
		if doc.GroupNumber() == "" {
			continue
		}
		if NormalizeHolderName(doc.HolderName()) == normalized {
			return doc.GroupNumber(), nil
		}
	}

	// Mint the next group number: B{max+1} over all existing B(\d+) values.
	// Group numbers are never reused, so the sequence stays dense in
	// first-seen holder order even after documents are deleted.
	max := 0
	for i := range existingBankingDocs {
		group := existingBankingDocs[i].GroupNumber()
		if group == "" {
			continue
		}
		matches := accountGroupPattern.FindStringSubmatch(group)
		if matches == nil {
			log.Printf("[WARNING] Skipping malformed account group number %q on document %d", group, existingBankingDocs[i].ID)
			continue
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			log.Printf("[WARNING] Skipping unparseable account group number %q on document %d", group, existingBankingDocs[i].ID)
			continue
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("B%d", max+1), nil
}
