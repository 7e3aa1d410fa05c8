package model

// InvestmentEntry is an investment strategy or product.
type InvestmentEntry struct {
	Meta
	Type          string `json:"type"`
	Title         string `json:"title"`
	TitleEn       string `json:"titleEn"`
	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`
}
