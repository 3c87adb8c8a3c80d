package core

import (
	"context"

	"github.com/dkeye/Arena/internal/domain"
)

// Authenticator maps a bearer token to a user. Implementations fail
// closed: any doubt about the token is ErrAuthFailure.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SpaceProvider fetches a space layout from the metadata store.
// Unknown ids return ErrSpaceNotFound.
type SpaceProvider interface {
	Space(ctx context.Context, id domain.SpaceID) (*domain.Space, error)
}
