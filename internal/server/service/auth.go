package service

import (
	"context"

	"todoapi/internal/server/token"
	"todoapi/internal/shared/models"
)

const bearerTokenType = "Bearer"

var errEmailTaken = &Error{Kind: KindConflict, Message: "email already registered"}

// AuthService implements registration, password login and refresh-token
// rotation on top of stateless signed tokens.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens *token.Authority
	clock  clock
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens *token.Authority, opts ...Option) *AuthService {
	a := &AuthService{users: users, hasher: hasher, tokens: tokens}
	for _, o := range opts {
		o(&a.clock)
	}
	return a
}

// Register creates an account and returns its first token pair. The
// existence check and the insert are separate statements; a concurrent
// duplicate loses at the unique constraint and surfaces as a storage error.
func (a *AuthService) Register(ctx context.Context, email, password string) (models.TokenResponse, error) {
	existing, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return models.TokenResponse{}, storageError("find user", err)
	}
	if existing != nil {
		return models.TokenResponse{}, errEmailTaken
	}
	digest, err := a.hasher.Hash(ctx, password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.TokenResponse{}, ctxErr
		}
		return models.TokenResponse{}, hashingError(err)
	}
	user, err := a.users.CreateUser(ctx, models.NewUser(email, digest, a.clock.now()))
	if err != nil {
		return models.TokenResponse{}, storageError("create user", err)
	}
	return a.issuePair(user)
}

// Login returns the same error for an unknown email and a wrong password.
func (a *AuthService) Login(ctx context.Context, email, password string) (models.TokenResponse, error) {
	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return models.TokenResponse{}, storageError("find user", err)
	}
	if user == nil {
		return models.TokenResponse{}, errInvalidCredentials
	}
	ok, err := a.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.TokenResponse{}, ctxErr
		}
		return models.TokenResponse{}, hashingError(err)
	}
	if !ok {
		return models.TokenResponse{}, errInvalidCredentials
	}
	return a.issuePair(*user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// not revoked and stays usable until it expires.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenResponse, error) {
	claims, err := a.tokens.Verify(refreshToken)
	if err != nil {
		return models.TokenResponse{}, &Error{Kind: KindUnauthorized, Message: "invalid token", Err: err}
	}
	if err := claims.Require(token.Refresh); err != nil {
		return models.TokenResponse{}, &Error{Kind: KindUnauthorized, Message: "unauthorized", Err: err}
	}
	user, err := a.users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		return models.TokenResponse{}, storageError("find user", err)
	}
	if user == nil {
		return models.TokenResponse{}, errUnauthorized
	}
	return a.issuePair(*user)
}

// Authenticate verifies an access token presented on a protected route.
func (a *AuthService) Authenticate(_ context.Context, accessToken string) (token.Claims, error) {
	claims, err := a.tokens.Verify(accessToken)
	if err != nil {
		return token.Claims{}, &Error{Kind: KindUnauthorized, Message: "invalid token", Err: err}
	}
	if err := claims.Require(token.Access); err != nil {
		return token.Claims{}, &Error{Kind: KindUnauthorized, Message: "unauthorized", Err: err}
	}
	return claims, nil
}

func (a *AuthService) issuePair(u models.User) (models.TokenResponse, error) {
	access, err := a.tokens.IssueAccess(u.ID, u.Email)
	if err != nil {
		return models.TokenResponse{}, &Error{Kind: KindInternal, Message: "issue access token", Err: err}
	}
	refresh, err := a.tokens.IssueRefresh(u.ID, u.Email)
	if err != nil {
		return models.TokenResponse{}, &Error{Kind: KindInternal, Message: "issue refresh token", Err: err}
	}
	return models.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(a.tokens.AccessTTL().Seconds()),
	}, nil
}
