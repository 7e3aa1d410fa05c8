package service

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// ReorderLeadership assigns `order = index` to ids, which must all be
// members of category. Members of other categories are not touched.
func (s *Service) ReorderLeadership(ctx context.Context, category string, ids []string) error {
	if !model.IsLeadershipCategory(category) {
		return validationf("unknown leadership category %q", category)
	}

	r, err := s.access.GetAll(ctx, model.ColLeadership, "", "")
	if err != nil {
		return err
	}
	categoryOf := make(map[string]string, len(r.Data))
	for _, doc := range r.Data {
		categoryOf[doc.ID] = doc.String("category")
	}

	for _, id := range ids {
		got, ok := categoryOf[id]
		if !ok {
			return errors.Wrapf(ErrNotFound, "leadership member %q", id)
		}
		if got != category {
			return validationf("member %q belongs to %q, not %q", id, got, category)
		}
	}

	updates, err := orderUpdates(ids)
	if err != nil {
		return err
	}

	return s.access.BatchUpdate(ctx, model.ColLeadership, updates)
}
