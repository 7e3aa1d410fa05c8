package service

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
)

// loadConfig reads a portfolio configuration singleton into out.
// Documents still stored in the legacy portfolio collection are read as a fallback.
// A singleton that exists nowhere leaves out untouched.
func (s *Service) loadConfig(ctx context.Context, docID string, out any) error {
	for _, col := range []string{model.ColPortfolioConfig, model.ColPortfolio} {
		r, err := s.access.GetOne(ctx, col, docID)
		if err != nil {
			return errors.Wrapf(err, "load %s", docID)
		}
		if !r.Success {
			continue
		}

		raw, err := r.Data.MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "marshal %s", docID)
		}
		if err = gutils.JSON.Unmarshal(raw, out); err != nil {
			return errors.Wrapf(err, "decode %s", docID)
		}
		return nil
	}

	return nil
}

func (s *Service) saveConfig(ctx context.Context, docID string, v any) error {
	data, err := model.ToData(v)
	if err != nil {
		return errors.Wrapf(err, "convert %s", docID)
	}
	if _, err = s.access.Set(ctx, model.ColPortfolioConfig, docID, data); err != nil {
		return err
	}

	return nil
}

// GetCategories returns configured categories sorted by order.
func (s *Service) GetCategories(ctx context.Context) ([]model.Category, error) {
	var list model.CategoryList
	if err := s.loadConfig(ctx, model.DocCategories, &list); err != nil {
		return nil, err
	}

	return list.Sorted(), nil
}

// SaveCategories replaces the category list.
func (s *Service) SaveCategories(ctx context.Context, categories []model.Category) ([]model.Category, error) {
	seen := map[string]bool{}
	items := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, validationf("category id is required")
		}
		if seen[c.ID] {
			return nil, validationf("duplicated category %q", c.ID)
		}
		seen[c.ID] = true
		items = append(items, c)
	}

	list := model.CategoryList{Items: items}
	if err := s.saveConfig(ctx, model.DocCategories, list); err != nil {
		return nil, err
	}

	return list.Sorted(), nil
}

// DeleteCategory removes category id unless a portfolio item references it.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	docs, err := s.portfolioDocs(ctx)
	if err != nil {
		return err
	}

	var refs []string
	for _, doc := range docs {
		if doc.String("category") == id {
			refs = append(refs, doc.ID)
		}
	}
	if len(refs) > 0 {
		return errors.Wrapf(ErrCategoryInUse, "category %q is used by %d portfolio items", id, len(refs))
	}

	var list model.CategoryList
	if err = s.loadConfig(ctx, model.DocCategories, &list); err != nil {
		return err
	}
	if !list.Has(id) {
		return errors.Wrapf(ErrNotFound, "category %q", id)
	}

	remaining := make([]model.Category, 0, len(list.Items))
	for _, c := range list.Items {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}

	return s.saveConfig(ctx, model.DocCategories, model.CategoryList{Items: remaining})
}

// GetLabels returns the configured detail labels.
func (s *Service) GetLabels(ctx context.Context) ([]model.Label, error) {
	var list model.LabelList
	if err := s.loadConfig(ctx, model.DocLabels, &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		return []model.Label{}, nil
	}

	return list.Items, nil
}

// SaveLabels replaces the label list.
func (s *Service) SaveLabels(ctx context.Context, labels []model.Label) ([]model.Label, error) {
	seen := map[string]bool{}
	items := make([]model.Label, 0, len(labels))
	for _, l := range labels {
		l.ID = model.NormalizeLabelID(l.ID)
		if l.ID == "" {
			return nil, validationf("label id is required")
		}
		if seen[l.ID] {
			return nil, validationf("duplicated label %q", l.ID)
		}
		seen[l.ID] = true
		items = append(items, l)
	}

	if err := s.saveConfig(ctx, model.DocLabels, model.LabelList{Items: items}); err != nil {
		return nil, err
	}

	return items, nil
}

// GetSummary returns the operational status board and total amount.
func (s *Service) GetSummary(ctx context.Context) (model.PortfolioSummary, error) {
	var summary model.PortfolioSummary
	if err := s.loadConfig(ctx, model.DocOperationalStatus, &summary.OperationalStatus); err != nil {
		return summary, err
	}
	if err := s.loadConfig(ctx, model.DocTotalAmount, &summary.TotalAmount); err != nil {
		return summary, err
	}
	if summary.OperationalStatus.Items == nil {
		summary.OperationalStatus.Items = []model.StatusEntry{}
	}

	return summary, nil
}

// SaveSummary overwrites both summary singletons.
func (s *Service) SaveSummary(ctx context.Context, summary model.PortfolioSummary) (model.PortfolioSummary, error) {
	if summary.OperationalStatus.Items == nil {
		summary.OperationalStatus.Items = []model.StatusEntry{}
	}
	if err := s.saveConfig(ctx, model.DocOperationalStatus, summary.OperationalStatus); err != nil {
		return summary, err
	}
	if err := s.saveConfig(ctx, model.DocTotalAmount, summary.TotalAmount); err != nil {
		return summary, err
	}

	return summary, nil
}

// portfolioDocs lists real portfolio rows, without configuration singletons.
func (s *Service) portfolioDocs(ctx context.Context) ([]*model.Document, error) {
	r, err := s.access.GetAll(ctx, model.ColPortfolio, "", "")
	if err != nil {
		return nil, err
	}

	return ordering.FilterSystemDocuments(r.Data, model.SystemDocumentIDs), nil
}

// preparePortfolio drops configuration singletons and folds legacy detail fields.
func (s *Service) preparePortfolio(ctx context.Context, docs []*model.Document) ([]*model.Document, error) {
	labels, err := s.GetLabels(ctx)
	if err != nil {
		return nil, err
	}

	docs = ordering.FilterSystemDocuments(docs, model.SystemDocumentIDs)
	for _, doc := range docs {
		model.FoldLegacyDetails(doc, labels)
	}

	return docs, nil
}

// GetPortfolioData loads items, categories, labels and the summary concurrently.
//
// Items lacking a title in both languages are dropped, the rest are sorted by
// order with items lacking order last, newest first.
func (s *Service) GetPortfolioData(ctx context.Context) (*model.PortfolioData, error) {
	var (
		data = &model.PortfolioData{}
		docs []*model.Document
	)

	pool, gctx := errgroup.WithContext(ctx)
	pool.Go(func() (err error) {
		docs, err = s.portfolioDocs(gctx)
		return err
	})
	pool.Go(func() (err error) {
		data.Categories, err = s.GetCategories(gctx)
		return err
	})
	pool.Go(func() (err error) {
		data.Labels, err = s.GetLabels(gctx)
		return err
	})
	pool.Go(func() (err error) {
		data.Summary, err = s.GetSummary(gctx)
		return err
	})
	if err := pool.Wait(); err != nil {
		return nil, errors.Wrap(err, "load portfolio")
	}

	docs = ordering.FilterIncomplete(docs, [][]string{titleRequired})
	for _, doc := range docs {
		model.FoldLegacyDetails(doc, data.Labels)
	}

	items, skipped := model.DecodeAll[model.PortfolioItem](docs)
	if len(skipped) > 0 {
		s.logger.Warn("skip malformed portfolio items", zap.Strings("ids", skipped))
	}
	data.Items = ordering.SortByOrderWithDateFallback(items)

	return data, nil
}

// VisibleItems keeps items whose category is configured, orphans stay in storage only.
func VisibleItems(data *model.PortfolioData) []model.PortfolioItem {
	categories := model.CategoryList{Items: data.Categories}
	out := make([]model.PortfolioItem, 0, len(data.Items))
	for _, it := range data.Items {
		if categories.Has(it.Category) {
			out = append(out, it)
		}
	}

	return out
}
