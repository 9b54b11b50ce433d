package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Service wraps authentication against the clinical backend.
type Service struct {
	api  *apiclient.Client
	repo Repository
}

// NewService constructs a new Service.
func NewService(api *apiclient.Client, repo Repository) *Service {
	if repo == nil {
		repo = NopRepository{}
	}
	return &Service{api: api, repo: repo}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate exchanges credentials for a token and the user profile. When
// the login reply omits the profile it is fetched from /auth/me.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, shared.UserProfile, error) {
	var result LoginResult
	err := s.api.PostJSON(ctx, "/auth/login", apiclient.Credentials{}, loginRequest{Username: username, Password: password}, &result)
	if err != nil {
		switch apiclient.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return "", shared.UserProfile{}, fmt.Errorf("%w: %w", shared.ErrInvalidCredentials, err)
		}
		return "", shared.UserProfile{}, err
	}
	if result.Token == "" {
		return "", shared.UserProfile{}, errors.New("auth: login reply without token")
	}
	if result.User != nil && result.User.Role != "" {
		return result.Token, *result.User, nil
	}
	user, err := s.Profile(ctx, apiclient.Credentials{Token: result.Token})
	if err != nil {
		return "", shared.UserProfile{}, err
	}
	return result.Token, user, nil
}

// Profile fetches the signed-in profile.
func (s *Service) Profile(ctx context.Context, creds apiclient.Credentials) (shared.UserProfile, error) {
	var user shared.UserProfile
	if err := s.api.GetJSON(ctx, "/auth/me", creds, &user); err != nil {
		return shared.UserProfile{}, err
	}
	return user, nil
}

// Logout tells the backend to revoke the token.
func (s *Service) Logout(ctx context.Context, creds apiclient.Credentials) error {
	_, err := s.api.Request(ctx, "/auth/logout", apiclient.Options{Method: http.MethodPost, Credentials: creds})
	return err
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, rec SessionRecord) error {
	return s.repo.CreateSession(ctx, rec)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// TokenExpired reports whether token is a JWT whose exp claim is before now.
// Opaque tokens never expire here; the backend decides.
func TokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
