package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
	portadmin "github.com/folio-dev/folio/internal/port/admin"
	portlocker "github.com/folio-dev/folio/internal/port/locker"
)

// provisionLockKey serialises provisioning across replicas started together.
const provisionLockKey int64 = 0x666f6c696f02

type Service struct {
	repo   portadmin.Repository
	hasher portadmin.PasswordHasher
	tokens portadmin.TokenIssuer
	locker portlocker.AdvisoryLocker
	logger *slog.Logger
}

func NewService(
	repo portadmin.Repository,
	hasher portadmin.PasswordHasher,
	tokens portadmin.TokenIssuer,
	locker portlocker.AdvisoryLocker,
	logger *slog.Logger,
) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, locker: locker, logger: logger}
}

func validateCredentials(username, password string) error {
	errs := validation.Errors{
		"username": validation.Validate(username,
			validation.Required.Error("Username is required."),
			validation.RuneLength(0, domainadmin.MaxUsernameLength).Error("Username must be 80 characters or less."),
		),
		"password": validation.Validate(password,
			validation.Required.Error("Password is required."),
			validation.RuneLength(domainadmin.MinPasswordLength, 0).Error("Password must be at least 8 characters."),
			validation.Length(0, domainadmin.MaxPasswordLength).Error("Password must be 72 bytes or less."),
		),
	}
	if verr := domain.ValidationFromOzzo(errs); verr != nil {
		return verr
	}
	return nil
}

// Register creates another admin account. Usernames are unique; a duplicate
// surfaces as domain.ErrConflict from the repository.
func (s *Service) Register(ctx context.Context, actor, username, password string) (domainadmin.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return domainadmin.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domainadmin.User{}, fmt.Errorf("register admin: %w", err)
	}
	created, err := s.repo.Create(ctx, domainadmin.New(username, hash))
	if err != nil {
		s.logger.WarnContext(ctx, "admin registration failed", "actor", actor, "username", username, "error", err)
		return domainadmin.User{}, fmt.Errorf("register admin: %w", err)
	}
	s.logger.InfoContext(ctx, "admin registered", "actor", actor, "id", created.ID, "username", created.Username)
	return created, nil
}

// Login checks credentials and issues an access token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (domainadmin.Token, domainadmin.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domainadmin.Token{}, domainadmin.User{}, domain.ErrUnauthorized
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.InfoContext(ctx, "admin login rejected", "username", username)
		return domainadmin.Token{}, domainadmin.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domainadmin.Token{}, domainadmin.User{}, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.logger.InfoContext(ctx, "admin login rejected", "username", username)
		if errors.Is(err, domain.ErrUnauthorized) {
			return domainadmin.Token{}, domainadmin.User{}, domain.ErrUnauthorized
		}
		return domainadmin.Token{}, domainadmin.User{}, fmt.Errorf("login: %w", err)
	}

	tok, err := s.tokens.Issue(u)
	if err != nil {
		return domainadmin.Token{}, domainadmin.User{}, fmt.Errorf("login: %w", err)
	}
	s.logger.InfoContext(ctx, "admin logged in", "id", u.ID, "username", u.Username)
	return tok, u, nil
}

func (s *Service) Verify(_ context.Context, token string) (domainadmin.Identity, error) {
	return s.tokens.Verify(token)
}

// Provision makes sure username exists with a usable password. It is safe to
// run on every start: an existing account is left alone unless reset is set.
func (s *Service) Provision(ctx context.Context, username, password string, reset bool) (domainadmin.ProvisionResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	var result domainadmin.ProvisionResult
	err := s.locker.WithLock(ctx, provisionLockKey, func(ctx context.Context) error {
		existing, err := s.repo.GetByUsername(ctx, username)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return err
			}
			if _, err := s.repo.Create(ctx, domainadmin.New(username, hash)); err != nil {
				return err
			}
			result = domainadmin.ProvisionCreated
			return nil
		case err != nil:
			return err
		case !reset:
			result = domainadmin.ProvisionUnchanged
			return nil
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		if err := s.repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return err
		}
		result = domainadmin.ProvisionReset
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("provision admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin provisioned", "username", username, "result", result)
	return result, nil
}
