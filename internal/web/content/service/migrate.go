package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// MigrationReport counts what MigratePortfolio changed.
type MigrationReport struct {
	MovedSingletons []string `json:"movedSingletons"`
	FoldedItems     []string `json:"foldedItems"`
}

// MigratePortfolio moves configuration singletons out of the portfolio
// collection into portfolioConfig and folds flat label fields into `details`.
// Running it twice is a no-op. With dryRun nothing is written.
func (s *Service) MigratePortfolio(ctx context.Context, dryRun bool) (*MigrationReport, error) {
	report := &MigrationReport{MovedSingletons: []string{}, FoldedItems: []string{}}

	for _, id := range model.SystemDocumentIDs {
		legacy, err := s.access.GetOne(ctx, model.ColPortfolio, id)
		if err != nil {
			return nil, err
		}
		if !legacy.Success {
			continue
		}

		current, err := s.access.GetOne(ctx, model.ColPortfolioConfig, id)
		if err != nil {
			return nil, err
		}
		report.MovedSingletons = append(report.MovedSingletons, id)
		if dryRun {
			continue
		}

		if !current.Success {
			if _, err = s.access.Set(ctx, model.ColPortfolioConfig, id, legacy.Data.Data); err != nil {
				return nil, errors.Wrapf(err, "copy %s", id)
			}
		} else {
			s.logger.Info("keep existing config, drop legacy copy", zap.String("doc", id))
		}
		if _, err = s.access.Delete(ctx, model.ColPortfolio, id); err != nil {
			return nil, errors.Wrapf(err, "delete legacy %s", id)
		}
	}

	labels, err := s.GetLabels(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.portfolioDocs(ctx)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		// folding only adds entries
		before := detailCount(doc)
		model.FoldLegacyDetails(doc, labels)
		if detailCount(doc) == before {
			continue
		}
		after := doc.Data["details"]

		report.FoldedItems = append(report.FoldedItems, doc.ID)
		if dryRun {
			continue
		}
		if _, err = s.access.Update(ctx, model.ColPortfolio, doc.ID, map[string]any{"details": after}); err != nil {
			return nil, errors.Wrapf(err, "fold details of %s", doc.ID)
		}
	}

	return report, nil
}

func detailCount(doc *model.Document) int {
	details, _ := doc.Data["details"].(map[string]any)
	return len(details)
}
