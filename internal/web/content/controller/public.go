package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
	"github.com/Laisky/amc-site/internal/web/content/service"
)

// RegisterPublic mounts the read-only localized API.
func (c *Content) RegisterPublic(g gin.IRouter) {
	g.GET("/overview", c.sectionsHandler("overview", c.svc.Overview, model.DefaultOverview))
	g.GET("/organization", c.sectionsHandler("organization", c.svc.Organization, nil))
	g.GET("/risk-compliance", c.sectionsHandler("risk_compliance", c.svc.RiskCompliance, nil))
	g.GET("/professional", c.Professional)
	g.GET("/contact", c.Contact)
	g.GET("/portfolio", c.Portfolio)
	g.GET("/investment-strategy", c.investmentHandler("investment_strategy", c.svc.InvestmentStrategies))
	g.GET("/investment-system", c.investmentHandler("investment_system", c.svc.InvestmentProducts))
	g.GET("/news", c.NewsList)
	g.GET("/news/:id", c.articleHandler(c.svc.News))
	g.GET("/disclosure", c.DisclosureList)
	g.GET("/disclosure/:id", c.articleHandler(c.svc.Disclosure))
	g.GET("/site-config", c.SiteConfig)
}

// sectionsHandler lists localized sections. When fallback is set it is
// served for a failed or empty read, otherwise failures yield an empty list.
func (c *Content) sectionsHandler(name string,
	col *service.Collection[model.Section],
	fallback func() []model.Section,
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logger := gmw.GetLogger(ctx).Named(name)
		lang := langOf(ctx)

		sections, err := col.ListComplete(ctx.Request.Context())
		if err != nil {
			logger.Warn("load sections, serve fallback", zap.Error(err))
			sections = nil
		}
		if len(sections) == 0 && fallback != nil {
			sections = fallback()
		}

		views := make([]SectionView, 0, len(sections))
		for _, s := range sections {
			v, err := newSectionView(lang, s)
			if err != nil {
				fail(ctx, err)
				return
			}
			views = append(views, v)
		}

		ctx.JSON(http.StatusOK, model.OK(views))
	}
}

// Professional returns leadership grouped by category.
func (c *Content) Professional(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("professional")

	members, err := c.svc.Leadership.ListComplete(ctx.Request.Context())
	if err != nil {
		logger.Warn("load leadership", zap.Error(err))
		members = nil
	}

	groups, err := groupMembers(langOf(ctx), members)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(groups))
}

// Contact returns the contact singleton or the built-in copy.
func (c *Content) Contact(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("contact")

	contact, err := c.svc.GetContact(ctx.Request.Context())
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			logger.Warn("load contact, serve fallback", zap.Error(err))
		}
		contact = model.DefaultContact()
	}

	v, err := newContactView(langOf(ctx), contact)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(v))
}

// Portfolio returns visible items grouped under their categories.
func (c *Content) Portfolio(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("portfolio")

	data, err := c.svc.GetPortfolioData(ctx.Request.Context())
	if err != nil {
		logger.Warn("load portfolio", zap.Error(err))
		data = &model.PortfolioData{}
	}

	view, err := newPortfolioView(langOf(ctx), data, service.VisibleItems(data))
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(view))
}

func (c *Content) investmentHandler(name string, col *service.Collection[model.InvestmentEntry]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logger := gmw.GetLogger(ctx).Named(name)
		lang := langOf(ctx)

		entries, err := col.ListComplete(ctx.Request.Context())
		if err != nil {
			logger.Warn("load investment entries", zap.Error(err))
			entries = nil
		}

		views := make([]InvestmentView, 0, len(entries))
		for _, e := range entries {
			v, err := newInvestmentView(lang, e)
			if err != nil {
				fail(ctx, err)
				return
			}
			views = append(views, v)
		}

		ctx.JSON(http.StatusOK, model.OK(views))
	}
}

// NewsList returns `?page=&size=` of news, newest first.
func (c *Content) NewsList(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("news")

	page, err := c.svc.ListNewsPage(ctx.Request.Context(), intQuery(ctx, "page"), intQuery(ctx, "size"))
	if err != nil {
		logger.Warn("load news", zap.Error(err))
		page = ordering.Paginate[model.Article](nil, nil, 1, service.DefaultNewsPageSize)
	}

	c.writePage(ctx, page)
}

// DisclosureList returns `?page=&size=` of disclosures with important ones on every page.
func (c *Content) DisclosureList(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("disclosure")

	page, err := c.svc.ListDisclosurePage(ctx.Request.Context(), intQuery(ctx, "page"), intQuery(ctx, "size"))
	if err != nil {
		logger.Warn("load disclosure", zap.Error(err))
		page = ordering.Paginate[model.Article](nil, nil, 1, service.DefaultDisclosurePageSize)
	}

	c.writePage(ctx, page)
}

func (c *Content) writePage(ctx *gin.Context, page ordering.Page[model.Article]) {
	view, err := newArticlePage(langOf(ctx), page)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(view))
}

func (c *Content) articleHandler(col *service.Collection[model.Article]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		item, err := col.Get(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			if !errors.Is(err, service.ErrNotFound) {
				gmw.GetLogger(ctx).Named(col.Name()).Warn("load article", zap.Error(err))
			}
			fail(ctx, err)
			return
		}

		v, err := newArticleView(langOf(ctx), item)
		if err != nil {
			fail(ctx, err)
			return
		}
		if item.IsImportant && col.Name() == model.ColDisclosure {
			v.Label = PinnedLabel
		}

		ctx.JSON(http.StatusOK, model.OK(v))
	}
}

// SiteConfig returns the frontend configuration.
func (c *Content) SiteConfig(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, model.OK(c.site))
}
