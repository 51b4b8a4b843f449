package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"casevault/models"

	"gorm.io/gorm"
)

// Disclosure row type constants
const (
	RowTypeCategory    = "CATEGORY"    // Category header (Real Property, Banking)
	RowTypeGroup       = "GROUP"       // Account holder group header (B1 Jane Doe)
	RowTypeInstitution = "INSTITUTION" // Institution sub-header within a group
	RowTypeDocument    = "DOCUMENT"    // A document line
)

// Category display names in fixed report order
var categoryOrder = []struct {
	Category string
	Label    string
}{
	{models.CategoryRealProperty, "Real Property"},
	{models.CategoryBanking, "Banking"},
}

// DisclosureRow is one line of the disclosure listing: either a header
// (category, account group, institution) or a document entry.
type DisclosureRow struct {
	Type  string `json:"type"`
	Label string `json:"label"`

	// Document fields (RowTypeDocument only)
	DocumentID     uint   `json:"document_id,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	Status         string `json:"status,omitempty"`
	Dated          string `json:"dated,omitempty"`
	IsNew          bool   `json:"is_new,omitempty"`
}

// DisclosureResult is the ordered, flagged row list plus the metadata the
// snapshot record needs. GeneratedAt is captured when the rows are computed
// so that documents added afterwards are flagged as new on the next report.
type DisclosureResult struct {
	CaseID        string          `json:"case_id"`
	Rows          []DisclosureRow `json:"rows"`
	NewCount      int             `json:"new_count"`
	DocumentCount int             `json:"document_count"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// BuildDisclosureRows computes the ordered, grouped, flagged row list for a
// document set. Pure function: lastSnapshotGeneratedAt nil means no prior
// snapshot exists and the report is the baseline, so nothing is flagged new.
// Only numbered documents appear in the listing; unconfirmed banking
// uploads have no disclosure identity yet.
func BuildDisclosureRows(docs []models.Document, lastSnapshotGeneratedAt *time.Time) *DisclosureResult {
	result := &DisclosureResult{GeneratedAt: time.Now()}

	isNew := func(d *models.Document) bool {
		if lastSnapshotGeneratedAt == nil {
			return false
		}
		return d.CreatedAt.After(*lastSnapshotGeneratedAt)
	}

	appendDocument := func(d *models.Document) {
		row := DisclosureRow{
			Type:           RowTypeDocument,
			DocumentID:     d.ID,
			DocumentNumber: d.Number(),
			DisplayName:    DisplayName(d),
			Status:         d.Status,
			Dated:          FormatDatedRange(d),
			IsNew:          isNew(d),
		}
		if row.IsNew {
			result.NewCount++
		}
		result.DocumentCount++
		result.Rows = append(result.Rows, row)
	}

	for _, cat := range categoryOrder {
		var members []models.Document
		for i := range docs {
			if docs[i].Category == cat.Category && docs[i].IsNumbered() {
				members = append(members, docs[i])
			}
		}
		if len(members) == 0 {
			continue
		}

		result.Rows = append(result.Rows, DisclosureRow{Type: RowTypeCategory, Label: cat.Label})

		if cat.Category == models.CategoryBanking {
			appendBankingRows(result, members, appendDocument)
			continue
		}

		sort.SliceStable(members, func(i, j int) bool {
			return CompareDocumentNumbers(members[i].Number(), members[j].Number()) < 0
		})
		for i := range members {
			appendDocument(&members[i])
		}
	}

	return result
}

// appendBankingRows emits account-holder group headers in ascending numeric
// group order, institution sub-headers only when a group spans more than one
// institution, and document rows ordered by document number.
func appendBankingRows(result *DisclosureResult, docs []models.Document, appendDocument func(*models.Document)) {
	groups := make(map[string][]models.Document)
	var order []string
	for i := range docs {
		group := docs[i].GroupNumber()
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], docs[i])
	}

	sort.Slice(order, func(i, j int) bool {
		return groupOrdinal(order[i]) < groupOrdinal(order[j])
	})

	for _, group := range order {
		members := groups[group]
		sort.SliceStable(members, func(i, j int) bool {
			return CompareDocumentNumbers(members[i].Number(), members[j].Number()) < 0
		})

		// Group header keeps the display casing of the first document
		// that created the group
		result.Rows = append(result.Rows, DisclosureRow{
			Type:  RowTypeGroup,
			Label: fmt.Sprintf("%s %s", group, members[0].HolderName()),
		})

		// Institution sub-grouping only when disambiguation is needed,
		// in stable first-seen order
		institutions := make(map[string][]models.Document)
		var instOrder []string
		for i := range members {
			inst := members[i].Institution()
			if _, seen := institutions[inst]; !seen {
				instOrder = append(instOrder, inst)
			}
			institutions[inst] = append(institutions[inst], members[i])
		}

		if len(instOrder) <= 1 {
			for i := range members {
				appendDocument(&members[i])
			}
			continue
		}

		for _, inst := range instOrder {
			result.Rows = append(result.Rows, DisclosureRow{Type: RowTypeInstitution, Label: inst})
			sub := institutions[inst]
			for i := range sub {
				appendDocument(&sub[i])
			}
		}
	}
}

// groupOrdinal extracts the numeric suffix of a B{n} group number for
// ordering. Malformed groups sort last.
func groupOrdinal(group string) int {
	matches := accountGroupPattern.FindStringSubmatch(group)
	if matches == nil {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// FormatDatedRange formats a document's "dated" field: the transaction date
// range collapsed to a single date when equal, or the upload date when no
// transaction dates are present. Pure formatting, not part of ordering.
func FormatDatedRange(d *models.Document) string {
	const layout = "02 Jan 2006"

	from := d.TransactionDateFrom
	to := d.TransactionDateTo

	switch {
	case from != nil && to != nil:
		if from.Format(layout) == to.Format(layout) {
			return from.Format(layout)
		}
		return from.Format(layout) + " to " + to.Format(layout)
	case from != nil:
		return from.Format(layout)
	case to != nil:
		return to.Format(layout)
	}
	return d.CreatedAt.Format(layout)
}

// BuildCaseDisclosure loads the case's documents and last snapshot and
// computes the disclosure rows. Must run under the case lock so that the
// read-compute sequence does not interleave with numbering writers.
func BuildCaseDisclosure(db *gorm.DB, caseID string) (*DisclosureResult, error) {
	var count int64
	if err := db.Model(&models.Case{}).Where("id = ?", caseID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check case: %w", err)
	}
	if count == 0 {
		return nil, NewNotFoundError("case %s not found", caseID)
	}

	var docs []models.Document
	if err := db.Where("case_id = ?", caseID).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch case documents: %w", err)
	}

	lastGeneratedAt, err := LastSnapshotGeneratedAt(db, caseID)
	if err != nil {
		return nil, err
	}

	result := BuildDisclosureRows(docs, lastGeneratedAt)
	result.CaseID = caseID
	return result, nil
}

// LastSnapshotGeneratedAt returns the GeneratedAt of the case's most recent
// snapshot, or nil when no snapshot exists yet
func LastSnapshotGeneratedAt(db *gorm.DB, caseID string) (*time.Time, error) {
	var snapshot models.DisclosureSnapshot
	err := db.Where("case_id = ?", caseID).
		Order("generated_at DESC").
		First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last snapshot: %w", err)
	}
	return &snapshot.GeneratedAt, nil
}

// SaveDisclosureSnapshot persists the snapshot record for a successfully
// rendered report. Called only after rendering succeeds: a failed render
// must not advance the diff baseline. Must run under the case lock.
func SaveDisclosureSnapshot(db *gorm.DB, result *DisclosureResult, format, storageKey, generatedByID string) (*models.DisclosureSnapshot, error) {
	snapshot := &models.DisclosureSnapshot{
		CaseID:                    result.CaseID,
		GeneratedAt:               result.GeneratedAt,
		DocumentCountAtGeneration: result.DocumentCount,
		Format:                    format,
		StorageKey:                storageKey,
		GeneratedByID:             generatedByID,
	}
	if err := db.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to create disclosure snapshot: %w", err)
	}
	return snapshot, nil
}
