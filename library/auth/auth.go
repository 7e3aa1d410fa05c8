// Package auth verifies admin credentials against the identity provider.
package auth

import (
	"context"

	"github.com/Laisky/errors/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// ErrInvalidCredentials is returned when the identity provider rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the account the provider resolved for a credential pair.
type Identity struct {
	UID   string
	Email string
}

// PasswordVerifier checks an email/password pair.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
}

// IdentityToolkit verifies passwords with the identity toolkit relying-party API.
type IdentityToolkit struct {
	svc *identitytoolkit.Service
}

// NewIdentityToolkit creates a verifier that authenticates with apiKey.
func NewIdentityToolkit(ctx context.Context, apiKey string, opts ...option.ClientOption) (*IdentityToolkit, error) {
	if apiKey == "" {
		return nil, errors.New("identity api key is empty")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "new identitytoolkit service")
	}

	return &IdentityToolkit{svc: svc}, nil
}

// VerifyPassword implements PasswordVerifier.
// Provider rejections are reported as ErrInvalidCredentials.
func (t *IdentityToolkit) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	resp, err := t.svc.Relyingparty.VerifyPassword(
		&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			return nil, errors.Wrap(ErrInvalidCredentials, apiErr.Message)
		}

		return nil, errors.Wrap(err, "verify password")
	}

	return &Identity{UID: resp.LocalId, Email: resp.Email}, nil
}
