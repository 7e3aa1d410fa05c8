package model

// Section is a titled block of paragraphs used by the overview,
// organization and risk-compliance pages.
type Section struct {
	Meta
	TitleKo       string   `json:"titleKo"`
	TitleEn       string   `json:"titleEn"`
	DescriptionKo []string `json:"descriptionKo"`
	DescriptionEn []string `json:"descriptionEn"`
	Image         string   `json:"image"`
}

// Contact is the `contact/main` singleton.
type Contact struct {
	Meta
	AddressKo       string `json:"addressKo"`
	AddressEn       string `json:"addressEn"`
	Phone           string `json:"phone"`
	Fax             string `json:"fax"`
	Email           string `json:"email"`
	MapURL          string `json:"mapUrl"`
	BusinessHoursKo string `json:"businessHoursKo"`
	BusinessHoursEn string `json:"businessHoursEn"`
}
