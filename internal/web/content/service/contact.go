package service

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

// GetContact loads the contact singleton, ErrNotFound when it was never saved.
func (s *Service) GetContact(ctx context.Context) (model.Contact, error) {
	r, err := s.access.GetOne(ctx, model.ColContact, model.DocContactMain)
	if err != nil {
		return model.Contact{}, err
	}
	if !r.Success {
		return model.Contact{}, errors.Wrap(ErrNotFound, "contact")
	}

	return model.Decode[model.Contact](r.Data)
}

// SaveContact upserts the contact singleton.
func (s *Service) SaveContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	data, err := model.ToData(c)
	if err != nil {
		return model.Contact{}, errors.Wrap(err, "convert contact")
	}
	if _, err = s.access.Set(ctx, model.ColContact, model.DocContactMain, data); err != nil {
		return model.Contact{}, err
	}

	return s.GetContact(ctx)
}
