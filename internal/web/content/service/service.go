package service

import (
	"context"
	"strings"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/internal/web/content/dao"
	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
)

// AttachmentRemover deletes uploaded objects referenced by a deleted article.
type AttachmentRemover interface {
	DeleteByURL(ctx context.Context, rawURL string) error
}

// Admin resource kinds as they appear in admin URLs.
const (
	KindOverview             = "overview"
	KindLeadership           = "leadership"
	KindNews                 = "news"
	KindDisclosure           = "disclosure"
	KindPortfolio            = "portfolio"
	KindInvestmentStrategies = "investment-strategies"
	KindInvestmentProducts   = "investment-products"
	KindOrganization         = "organization"
	KindRiskCompliance       = "risk-compliance"
)

var (
	titleRequired   = []string{"titleKo", "titleEn"}
	articleRequired = []string{"title", "titleEn"}
	nameRequired    = []string{"nameKo", "nameEn"}
)

// Service is the content domain of the site.
type Service struct {
	logger      glog.Logger
	access      *Access
	attachments AttachmentRemover

	Overview             *Collection[model.Section]
	Leadership           *Collection[model.LeadershipMember]
	News                 *Collection[model.Article]
	Disclosure           *Collection[model.Article]
	Portfolio            *Collection[model.PortfolioItem]
	InvestmentStrategies *Collection[model.InvestmentEntry]
	InvestmentProducts   *Collection[model.InvestmentEntry]
	Organization         *Collection[model.Section]
	RiskCompliance       *Collection[model.Section]

	resources map[string]Resource
}

// Option configures a Service.
type Option func(*Service)

// WithAttachmentRemover deletes article uploads when the article is deleted.
func WithAttachmentRemover(r AttachmentRemover) Option {
	return func(s *Service) {
		s.attachments = r
	}
}

// New builds the service over store.
func New(logger glog.Logger, store dao.Store, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		access: NewAccess(logger.Named("access"), store),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Overview = NewCollection(s.access, model.ColOverview,
		WithRequired[model.Section](titleRequired))
	s.Organization = NewCollection(s.access, model.ColOrganization,
		WithRequired[model.Section](titleRequired))
	s.RiskCompliance = NewCollection(s.access, model.ColRiskCompliance,
		WithRequired[model.Section](titleRequired))
	s.Leadership = NewCollection(s.access, model.ColLeadership,
		WithSort(ordering.SortLeadership),
		WithValidate(validateLeadership),
		WithRequired[model.LeadershipMember](nameRequired))
	s.News = NewCollection(s.access, model.ColNews,
		WithSort(ordering.SortByDateDesc),
		WithValidate(validateArticle),
		WithOnDelete(s.removeAttachments),
		WithRequired[model.Article](articleRequired))
	s.Disclosure = NewCollection(s.access, model.ColDisclosure,
		WithSort(ordering.SortByDateDesc),
		WithValidate(validateArticle),
		WithOnDelete(s.removeAttachments),
		WithRequired[model.Article](articleRequired))
	s.Portfolio = NewCollection(s.access, model.ColPortfolio,
		WithPrepare[model.PortfolioItem](s.preparePortfolio),
		WithRequired[model.PortfolioItem](titleRequired))
	s.InvestmentStrategies = NewCollection(s.access, model.ColInvestmentStrategies,
		WithSort(ordering.SortByOrder[model.InvestmentEntry]),
		WithRequired[model.InvestmentEntry](articleRequired))
	s.InvestmentProducts = NewCollection(s.access, model.ColInvestmentProducts,
		WithSort(ordering.SortByOrder[model.InvestmentEntry]),
		WithRequired[model.InvestmentEntry](articleRequired))

	s.resources = map[string]Resource{
		KindOverview:             s.Overview,
		KindLeadership:           s.Leadership,
		KindNews:                 s.News,
		KindDisclosure:           s.Disclosure,
		KindPortfolio:            s.Portfolio,
		KindInvestmentStrategies: s.InvestmentStrategies,
		KindInvestmentProducts:   s.InvestmentProducts,
		KindOrganization:         s.Organization,
		KindRiskCompliance:       s.RiskCompliance,
	}

	return s
}

// Access returns the schemaless access layer.
func (s *Service) Access() *Access {
	return s.access
}

// Resource looks up an admin kind.
func (s *Service) Resource(kind string) (Resource, bool) {
	r, ok := s.resources[kind]
	return r, ok
}

// Collections lists the store collections an admin may watch.
func (s *Service) Collections() []string {
	return []string{
		model.ColOverview,
		model.ColLeadership,
		model.ColContact,
		model.ColNews,
		model.ColPortfolio,
		model.ColDisclosure,
		model.ColInvestmentStrategies,
		model.ColInvestmentProducts,
		model.ColOrganization,
		model.ColRiskCompliance,
		model.ColPortfolioConfig,
	}
}

func validateLeadership(m model.LeadershipMember) error {
	if !model.IsLeadershipCategory(m.Category) {
		return validationf("unknown leadership category %q", m.Category)
	}
	if strings.TrimSpace(m.NameKo) == "" && strings.TrimSpace(m.NameEn) == "" {
		return validationf("name is required")
	}

	return nil
}

func validateArticle(a model.Article) error {
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.TitleEn) == "" {
		return validationf("title is required")
	}
	if a.PublishDate != "" && model.ParseDate(a.PublishDate).IsZero() {
		return validationf("invalid publishDate %q", a.PublishDate)
	}

	return nil
}

// removeAttachments deletes uploads of a deleted article, failures are only logged.
func (s *Service) removeAttachments(ctx context.Context, a model.Article) {
	if s.attachments == nil {
		return
	}

	for _, att := range a.Attachments() {
		if att.URL == "" {
			continue
		}
		if err := s.attachments.DeleteByURL(ctx, att.URL); err != nil {
			s.logger.Warn("delete attachment",
				zap.String("article", a.ID),
				zap.String("url", att.URL),
				zap.Error(err))
		}
	}
}
