package model

import (
	"sort"
	"strings"
)

// Built-in portfolio label ids, stored as first-class fields on every item.
const (
	LabelLocation = "location"
	LabelGFA      = "gfa"
	LabelFloors   = "floors"
)

// BuiltinLabelIDs lists labels backed by fixed item fields.
var BuiltinLabelIDs = []string{LabelLocation, LabelGFA, LabelFloors}

// IsBuiltinLabel reports whether id is one of the fixed detail fields.
func IsBuiltinLabel(id string) bool {
	for _, b := range BuiltinLabelIDs {
		if b == id {
			return true
		}
	}

	return false
}

// PortfolioItem is one listed asset.
type PortfolioItem struct {
	Meta
	TitleKo    string `json:"titleKo"`
	TitleEn    string `json:"titleEn"`
	CategoryKo string `json:"categoryKo"`
	CategoryEn string `json:"categoryEn"`
	// Category must match a configured Category id to be displayed.
	Category   string `json:"category"`
	LocationKo string `json:"locationKo"`
	LocationEn string `json:"locationEn"`
	GfaKo      string `json:"gfaKo"`
	GfaEn      string `json:"gfaEn"`
	FloorsKo   string `json:"floorsKo"`
	FloorsEn   string `json:"floorsEn"`
	Image      string `json:"image"`
	// Details holds the values of non built-in labels keyed by label id.
	Details map[string]LocalizedText `json:"details"`
}

// Detail returns the value shown for label id.
func (p PortfolioItem) Detail(id string) LocalizedText {
	switch id {
	case LabelLocation:
		return LocalizedText{Ko: p.LocationKo, En: p.LocationEn}
	case LabelGFA:
		return LocalizedText{Ko: p.GfaKo, En: p.GfaEn}
	case LabelFloors:
		return LocalizedText{Ko: p.FloorsKo, En: p.FloorsEn}
	}

	return p.Details[id]
}

// Category is a portfolio taxonomy entry.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// Label names a detail field shown for every portfolio item.
type Label struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CategoryList is the `categories` configuration singleton.
type CategoryList struct {
	Items []Category `json:"items"`
}

// Sorted returns categories by ascending order, ties by id.
func (c CategoryList) Sorted() []Category {
	out := append([]Category{}, c.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// Has reports whether id is a configured category.
func (c CategoryList) Has(id string) bool {
	for _, cat := range c.Items {
		if cat.ID == id {
			return true
		}
	}

	return false
}

// LabelList is the `labels` configuration singleton.
type LabelList struct {
	Items []Label `json:"items"`
}

// StatusEntry is one row of the operational status board.
type StatusEntry struct {
	LabelKo string `json:"labelKo"`
	LabelEn string `json:"labelEn"`
	ValueKo string `json:"valueKo"`
	ValueEn string `json:"valueEn"`
}

// OperationalStatus is the `operational-status` singleton.
type OperationalStatus struct {
	Items []StatusEntry `json:"items"`
}

// TotalAmount is the `total-amount` singleton.
type TotalAmount struct {
	ValueKo string `json:"valueKo"`
	ValueEn string `json:"valueEn"`
	AsOf    string `json:"asOf"`
}

// PortfolioSummary groups the two summary singletons.
type PortfolioSummary struct {
	OperationalStatus OperationalStatus `json:"operationalStatus"`
	TotalAmount       TotalAmount       `json:"totalAmount"`
}

// PortfolioData is everything the portfolio page needs.
type PortfolioData struct {
	Items      []PortfolioItem  `json:"items"`
	Categories []Category       `json:"categories"`
	Labels     []Label          `json:"labels"`
	Summary    PortfolioSummary `json:"summary"`
}

// FoldLegacyDetails moves flat `${label}Ko`/`${label}En` fields of doc into its
// `details` map for every non built-in label. Existing map entries win.
func FoldLegacyDetails(doc *Document, labels []Label) {
	details, _ := doc.Data["details"].(map[string]any)
	for _, l := range labels {
		if l.ID == "" || IsBuiltinLabel(l.ID) {
			continue
		}

		ko, hasKo := doc.Data[l.ID+"Ko"].(string)
		en, hasEn := doc.Data[l.ID+"En"].(string)
		if !hasKo && !hasEn {
			continue
		}
		if details == nil {
			details = map[string]any{}
		}
		if _, ok := details[l.ID]; ok {
			continue
		}

		details[l.ID] = map[string]any{"ko": ko, "en": en}
	}

	if details != nil {
		doc.Data["details"] = details
	}
}

// LegacyDetailFields returns the flat field names FoldLegacyDetails reads for labels.
func LegacyDetailFields(labels []Label) []string {
	var fields []string
	for _, l := range labels {
		if l.ID == "" || IsBuiltinLabel(l.ID) {
			continue
		}
		fields = append(fields, l.ID+"Ko", l.ID+"En")
	}

	return fields
}

// NormalizeLabelID trims a user supplied label id.
func NormalizeLabelID(id string) string {
	return strings.TrimSpace(id)
}
