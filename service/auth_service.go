package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventra/clock"
	"eventra/constants"
	"eventra/helper"
	"eventra/model"
	"eventra/store"
	"eventra/utils"
)

const mailTimeout = 30 * time.Second

type AuthService struct {
	users     store.UserStore
	mailer    utils.Mailer
	clock     clock.Clock
	secret    []byte
	clientURL string
	logger    *slog.Logger
	// sendAsync is swapped in tests to deliver mail inline.
	sendAsync func(func())
}

func NewAuthService(users store.UserStore, mailer utils.Mailer, clk clock.Clock, secret []byte, clientURL string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		clock:     clk,
		secret:    secret,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
		sendAsync: func(f func()) { go f() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks the credentials and issues a session token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if !helper.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := helper.GenerateAccessToken(s.secret, user.ID, s.clock.Now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// Register creates a staff account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	hash, err := helper.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", nil, ErrEmailInUse
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := helper.GenerateAccessToken(s.secret, user.ID, s.clock.Now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("user registered", "userId", user.ID)
	return token, user, nil
}

// Authorize resolves a session token to its user.
func (s *AuthService) Authorize(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := helper.ParseToken(s.secret, token, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	user, err := s.users.FindByID(ctx, claims.UserId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", claims.UserId, err)
	}
	return user, nil
}

// RequestPasswordReset emails a reset link when the address belongs to a
// user. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	token, hash, err := helper.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	now := s.clock.Now()
	if err := s.users.SetResetToken(ctx, user.ID, hash, now.Add(helper.ResetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	mail, err := utils.PasswordResetMail(user.Email, constants.PASSWORD_RESET_SUBJ, utils.PasswordResetData{
		ResetURL:  fmt.Sprintf("%s/reset-password/%s", s.clientURL, token),
		ExpiresIn: helper.ResetTokenTTL,
		Year:      now.Year(),
	})
	if err != nil {
		return err
	}

	userId := user.ID
	s.sendAsync(func() {
		mctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := s.mailer.Send(mctx, mail); err != nil {
			s.logger.Error("password reset email failed", "userId", userId, "error", err)
		}
	})
	return nil
}

// ResetPassword sets a new password for the holder of a live reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return ErrMissingCredentials
	}

	hash := helper.HashResetToken(token)
	user, err := s.users.FindByResetToken(ctx, hash, s.clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		return fmt.Errorf("find reset token: %w", err)
	}

	pwHash, err := helper.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ok, err := s.users.ResetPassword(ctx, user.ID, hash, pwHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !ok {
		return ErrInvalidOrExpiredToken
	}
	s.logger.Info("password reset", "userId", user.ID)
	return nil
}

// PurgeExpiredResetTokens clears reset tokens past their expiry.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.users.PurgeExpiredResetTokens(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return n, nil
}

// EnsureUser creates the account when the email is not taken yet.
func (s *AuthService) EnsureUser(ctx context.Context, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	_, user, err := s.Register(ctx, email, password)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
