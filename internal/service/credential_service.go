package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(identity model.Identity) (string, error)
	TTL() time.Duration
}

// CredentialConfig holds the bootstrap account and hashing cost.
type CredentialConfig struct {
	AdminUsername string
	AdminPassword string
	BcryptCost    int
}

// credentialService implements CredentialService.
type credentialService struct {
	store  repository.Store
	tokens TokenIssuer
	config CredentialConfig
	logger zerolog.Logger
}

// NewCredentialService creates a new credential service.
func NewCredentialService(store repository.Store, tokens TokenIssuer, config CredentialConfig, logger zerolog.Logger) CredentialService {
	return &credentialService{
		store:  store,
		tokens: tokens,
		config: config,
		logger: logger.With().Str("service", "credential").Logger(),
	}
}

// Bootstrap creates the default administrator when the credential set is empty.
func (s *credentialService) Bootstrap(ctx context.Context) error {
	_, err := s.users(ctx)
	return err
}

// VerifyCredentials looks the username up case-insensitively and checks the
// password. Unknown users and wrong passwords fail identically.
func (s *credentialService) VerifyCredentials(ctx context.Context, username, password string) (*model.Identity, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(username)
	for _, u := range users {
		if !strings.EqualFold(strings.TrimSpace(u.Username), name) {
			continue
		}
		if !auth.CheckPassword(u.Password, password) {
			s.logger.Warn().Str("username", name).Msg("login rejected")
			return nil, model.ErrInvalidCredentials
		}
		return &model.Identity{ID: u.ID, Username: u.Username}, nil
	}

	auth.BurnPasswordCheck(password, s.config.BcryptCost)
	s.logger.Warn().Str("username", name).Msg("login rejected")

	return nil, model.ErrInvalidCredentials
}

// Login verifies credentials and issues a signed token.
func (s *credentialService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, model.ErrCredentialsRequired
	}

	identity, err := s.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(*identity)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", identity.ID).Msg("failed to issue token")
		return nil, model.NewBackendError("failed to issue token", err)
	}

	s.logger.Info().Int64("user_id", identity.ID).Str("username", identity.Username).Msg("login succeeded")

	return &model.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// ChangePassword verifies the old password before storing the hash of the new one.
func (s *credentialService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return model.ErrPasswordsRequired
	}

	users, err := s.users(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Int64("user_id", userID).Msg("password change for unknown user")
		return model.ErrUserNotFound
	}

	if !auth.CheckPassword(users[idx].Password, req.OldPassword) {
		s.logger.Warn().Int64("user_id", userID).Msg("password change rejected: old password incorrect")
		return model.ErrWrongOldPassword
	}

	hash, err := auth.HashPassword(req.NewPassword, s.config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return model.ErrPasswordTooLong
	}
	if err != nil {
		return model.NewBackendError("Could not save password", err)
	}
	users[idx].Password = hash

	if err := s.store.SaveUsers(ctx, users); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to persist new password")
		return model.NewBackendError("Could not save password", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("password changed")

	return nil
}

// users loads the credential set, creating the bootstrap administrator on
// first use when it is empty.
func (s *credentialService) users(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load users")
		return nil, model.NewBackendError("failed to load users", err)
	}
	if len(users) > 0 {
		return users, nil
	}

	hash, err := auth.HashPassword(s.config.AdminPassword, s.config.BcryptCost)
	if err != nil {
		return nil, model.NewBackendError("failed to create bootstrap user", err)
	}

	users = []model.User{{ID: 1, Username: s.config.AdminUsername, Password: hash}}
	if err := s.store.SaveUsers(ctx, users); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist bootstrap user")
		return nil, model.NewBackendError("failed to create bootstrap user", fmt.Errorf("save bootstrap user: %w", err))
	}

	s.logger.Info().Str("username", s.config.AdminUsername).Msg("created bootstrap administrator")

	return users, nil
}
