package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/auth"
	"betpool-backend/internal/model"
	"betpool-backend/internal/repository"
)

// AuthService orchestrates the identity exchange: provider access token in,
// signed bearer token out.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	provider *auth.Provider
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	provider *auth.Provider,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		provider: provider,
		logger:   logger,
	}
}

// ExchangeToken resolves the provider access token into a user profile,
// upserts the user (created on first exchange, profile refreshed after),
// and returns a signed bearer token whose subject is the internal user ID.
//
// An access token the provider rejects is a client input problem, so it
// surfaces as a validation failure rather than an internal error.
func (s *AuthService) ExchangeToken(ctx context.Context, accessToken string) (string, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return "", apperror.ValidationFailed("access_token", "access token is required")
	}

	profile, err := s.provider.FetchUser(ctx, accessToken)
	if err != nil {
		s.logger.Warn("identity provider rejected token", slog.String("error", err.Error()))
		return "", apperror.ValidationFailed("access_token", "could not validate access token")
	}

	user := &model.User{
		ProviderID: profile.ID,
		Name:       profile.Name,
		Email:      profile.Email,
		AvatarURL:  profile.Picture,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return "", fmt.Errorf("upserting user: %w", err)
	}

	s.logger.Info("user authenticated",
		slog.String("userId", user.ID),
		slog.String("name", user.Name),
	)

	token, err := s.tokens.Generate(user.ID, user.Name, user.AvatarURL)
	if err != nil {
		return "", fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	return token, nil
}

// Count returns the total number of registered users.
func (s *AuthService) Count(ctx context.Context) (int64, error) {
	return s.users.CountUsers(ctx)
}
