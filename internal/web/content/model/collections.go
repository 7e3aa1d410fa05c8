package model

// Collection names of the document store.
const (
	ColOverview             = "overview"
	ColLeadership           = "leadership"
	ColContact              = "contact"
	ColNews                 = "news"
	ColPortfolio            = "portfolio"
	ColDisclosure           = "disclosure"
	ColInvestmentStrategies = "investmentStrategies"
	ColInvestmentProducts   = "investmentProducts"
	ColOrganization         = "organization"
	ColRiskCompliance       = "risk-compliance"
	// ColPortfolioConfig holds portfolio configuration singletons apart from listing rows.
	ColPortfolioConfig = "portfolioConfig"
	// ColAdmins is the admin allowlist.
	ColAdmins = "admins"
)

// Well-known singleton document ids.
const (
	DocContactMain       = "main"
	DocCategories        = "categories"
	DocLabels            = "labels"
	DocOperationalStatus = "operational-status"
	DocTotalAmount       = "total-amount"
)

// SystemDocumentIDs are configuration singletons that historically live
// inside the portfolio collection next to real listing rows.
var SystemDocumentIDs = []string{
	DocCategories,
	DocOperationalStatus,
	DocTotalAmount,
	DocLabels,
}

// Field names the access layer maintains itself.
const (
	FieldID        = "id"
	FieldOrder     = "order"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)
