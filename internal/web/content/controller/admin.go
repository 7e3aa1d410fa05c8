package controller

import (
	"io"
	"net/http"
	"slices"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/service"
)

const (
	maxAdminBody   = 4 << 20
	watchHeartbeat = 30 * time.Second
)

// ReorderRequest is the body of `POST /:kind/reorder`.
type ReorderRequest struct {
	// Category is required for leadership.
	Category string   `json:"category"`
	IDs      []string `json:"ids"`
}

// RegisterAdmin mounts the admin API on an already guarded group.
func (c *Content) RegisterAdmin(g gin.IRouter) {
	for _, kind := range []string{
		service.KindOverview,
		service.KindLeadership,
		service.KindNews,
		service.KindDisclosure,
		service.KindPortfolio,
		service.KindInvestmentStrategies,
		service.KindInvestmentProducts,
		service.KindOrganization,
		service.KindRiskCompliance,
	} {
		res, ok := c.svc.Resource(kind)
		if !ok {
			continue
		}

		g.GET("/"+kind, c.listHandler(res))
		g.POST("/"+kind, c.createHandler(res))
		g.GET("/"+kind+"/:id", c.getHandler(res))
		g.PUT("/"+kind+"/:id", c.updateHandler(res))
		g.DELETE("/"+kind+"/:id", c.deleteHandler(res))
		if kind == service.KindLeadership {
			g.POST("/"+kind+"/reorder", c.ReorderLeadership)
		} else {
			g.POST("/"+kind+"/reorder", c.reorderHandler(res))
		}
	}

	g.GET("/contact", c.AdminGetContact)
	g.PUT("/contact", c.AdminSaveContact)

	g.GET("/portfolio/categories", c.GetCategories)
	g.PUT("/portfolio/categories", c.SaveCategories)
	g.DELETE("/portfolio/categories/:id", c.DeleteCategory)
	g.GET("/portfolio/labels", c.GetLabels)
	g.PUT("/portfolio/labels", c.SaveLabels)
	g.GET("/portfolio/summary", c.GetSummary)
	g.PUT("/portfolio/summary", c.SaveSummary)

	g.GET("/watch/:collection", c.Watch)
}

// listHandler responds with an empty list when the store fails.
func (c *Content) listHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		items, err := res.ListAny(ctx.Request.Context())
		if err != nil {
			gmw.GetLogger(ctx).Error("list", zap.String("collection", res.Name()), zap.Error(err))
			ctx.JSON(http.StatusOK, model.OK([]any{}))
			return
		}

		ctx.JSON(http.StatusOK, model.OK(items))
	}
}

func (c *Content) getHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		item, err := res.GetAny(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(item))
	}
}

func readBody(ctx *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxAdminBody))
}

func (c *Content) createHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		body, err := readBody(ctx)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
			return
		}

		item, err := res.CreateJSON(ctx.Request.Context(), body)
		if err != nil {
			c.logWrite(ctx, res.Name(), "create", err)
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(item))
	}
}

func (c *Content) updateHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		body, err := readBody(ctx)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
			return
		}

		item, err := res.UpdateJSON(ctx.Request.Context(), ctx.Param("id"), body)
		if err != nil {
			c.logWrite(ctx, res.Name(), "update", err)
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(item))
	}
}

func (c *Content) deleteHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.Param("id")
		if err := res.Delete(ctx.Request.Context(), id); err != nil {
			c.logWrite(ctx, res.Name(), "delete", err)
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(id))
	}
}

func (c *Content) reorderHandler(res service.Resource) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req := new(ReorderRequest)
		if err := ctx.ShouldBindJSON(req); err != nil {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
			return
		}

		if err := res.Reorder(ctx.Request.Context(), req.IDs); err != nil {
			c.logWrite(ctx, res.Name(), "reorder", err)
			fail(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(req.IDs))
	}
}

// ReorderLeadership reorders members of one category.
func (c *Content) ReorderLeadership(ctx *gin.Context) {
	req := new(ReorderRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
		return
	}

	if err := c.svc.ReorderLeadership(ctx.Request.Context(), req.Category, req.IDs); err != nil {
		c.logWrite(ctx, model.ColLeadership, "reorder", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(req.IDs))
}

func (c *Content) logWrite(ctx *gin.Context, col, op string, err error) {
	if statusOf(err) < http.StatusInternalServerError {
		return
	}

	gmw.GetLogger(ctx).Error("write content",
		zap.String("collection", col),
		zap.String("op", op),
		zap.Error(err))
}

// AdminGetContact returns the stored contact, the built-in copy when never saved.
func (c *Content) AdminGetContact(ctx *gin.Context) {
	contact, err := c.svc.GetContact(ctx.Request.Context())
	if err != nil {
		if statusOf(err) != http.StatusNotFound {
			fail(ctx, err)
			return
		}
		contact = model.DefaultContact()
	}

	ctx.JSON(http.StatusOK, model.OK(contact))
}

// AdminSaveContact upserts the contact singleton.
func (c *Content) AdminSaveContact(ctx *gin.Context) {
	req := new(model.Contact)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
		return
	}

	saved, err := c.svc.SaveContact(ctx.Request.Context(), *req)
	if err != nil {
		c.logWrite(ctx, model.ColContact, "set", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(saved))
}

// GetCategories lists portfolio categories.
func (c *Content) GetCategories(ctx *gin.Context) {
	categories, err := c.svc.GetCategories(ctx.Request.Context())
	if err != nil {
		gmw.GetLogger(ctx).Error("list categories", zap.Error(err))
		ctx.JSON(http.StatusOK, model.OK([]model.Category{}))
		return
	}

	ctx.JSON(http.StatusOK, model.OK(categories))
}

// SaveCategories replaces the category list.
func (c *Content) SaveCategories(ctx *gin.Context) {
	var req []model.Category
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
		return
	}

	saved, err := c.svc.SaveCategories(ctx.Request.Context(), req)
	if err != nil {
		c.logWrite(ctx, model.ColPortfolioConfig, "categories", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(saved))
}

// DeleteCategory deletes an unreferenced category, 409 while in use.
func (c *Content) DeleteCategory(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.svc.DeleteCategory(ctx.Request.Context(), id); err != nil {
		c.logWrite(ctx, model.ColPortfolioConfig, "delete_category", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(id))
}

// GetLabels lists portfolio detail labels.
func (c *Content) GetLabels(ctx *gin.Context) {
	labels, err := c.svc.GetLabels(ctx.Request.Context())
	if err != nil {
		gmw.GetLogger(ctx).Error("list labels", zap.Error(err))
		ctx.JSON(http.StatusOK, model.OK([]model.Label{}))
		return
	}

	ctx.JSON(http.StatusOK, model.OK(labels))
}

// SaveLabels replaces the label list.
func (c *Content) SaveLabels(ctx *gin.Context) {
	var req []model.Label
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
		return
	}

	saved, err := c.svc.SaveLabels(ctx.Request.Context(), req)
	if err != nil {
		c.logWrite(ctx, model.ColPortfolioConfig, "labels", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(saved))
}

// GetSummary returns the portfolio summary singletons.
func (c *Content) GetSummary(ctx *gin.Context) {
	summary, err := c.svc.GetSummary(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(summary))
}

// SaveSummary overwrites the portfolio summary singletons.
func (c *Content) SaveSummary(ctx *gin.Context) {
	req := new(model.PortfolioSummary)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
		return
	}

	saved, err := c.svc.SaveSummary(ctx.Request.Context(), *req)
	if err != nil {
		c.logWrite(ctx, model.ColPortfolioConfig, "summary", err)
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(saved))
}

// Watch streams `snapshot` server-sent events of a collection until the client leaves.
// Only the latest snapshot is kept when the client reads slower than changes arrive.
func (c *Content) Watch(ctx *gin.Context) {
	col := ctx.Param("collection")
	if !slices.Contains(c.svc.Collections(), col) {
		ctx.JSON(http.StatusNotFound, model.Fail[any](service.ErrNotFound))
		return
	}

	logger := gmw.GetLogger(ctx).Named("watch").With(zap.String("collection", col))
	reqCtx := ctx.Request.Context()

	updates := make(chan *model.Result[[]*model.Document], 1)
	push := func(r *model.Result[[]*model.Document]) {
		for {
			select {
			case updates <- r:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}

	stop, err := c.svc.Access().Subscribe(reqCtx, col, push, nil, "")
	if err != nil {
		logger.Error("subscribe", zap.Error(err))
		fail(ctx, err)
		return
	}
	defer stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	heartbeat := time.NewTicker(watchHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-reqCtx.Done():
			logger.Debug("watcher left")
			return
		case r := <-updates:
			ctx.SSEvent("snapshot", r)
		case <-heartbeat.C:
			ctx.SSEvent("ping", "")
		}
		ctx.Writer.Flush()
	}
}
