package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/config"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/dashboard-auth/internal/errors"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/otp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type AuthService struct {
	repo     domain.UserRepository
	tokens   TokenGenerator
	otps     domain.OTPStore
	notifier domain.Notifier
	identity domain.IdentityVerifier
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

type Option func(*AuthService)

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithCodeGenerator replaces the crypto/rand OTP source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *AuthService) { s.newCode = gen }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *AuthService) { s.logger = logger }
}

func NewAuthService(
	repo domain.UserRepository,
	tokens TokenGenerator,
	otps domain.OTPStore,
	notifier domain.Notifier,
	identity domain.IdentityVerifier,
	cfg *config.Config,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		repo:     repo,
		tokens:   tokens,
		otps:     otps,
		notifier: notifier,
		identity: identity,
		cfg:      cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
		newCode:  otp.GenerateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Signup(ctx context.Context, input dto.SignupInput) (*dto.AuthResponse, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, autherror.ErrValidation
	}
	if len(input.Password) > MaxPasswordBytes {
		return nil, autherror.ErrPasswordTooLong
	}

	existingUser, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueSession(user)
}

// Login never says whether the email or the password was wrong. Every call
// that reaches the credential check appends exactly one login attempt.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		if err := s.repo.RecordLoginAttempt(ctx, input.Email, input.IPAddress, domain.LoginFailed); err != nil {
			s.logger.Warn("failed to record login attempt",
				zap.String("email", input.Email), zap.Error(err))
		}
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginAttempt(ctx, input.Email, input.IPAddress, domain.LoginSuccess); err != nil {
		return nil, fmt.Errorf("failed to record login attempt: %w", err)
	}

	return s.issueSession(user)
}

func (s *AuthService) FederatedLogin(ctx context.Context, input dto.FederatedLoginInput) (*dto.AuthResponse, error) {
	if input.IdentityToken == "" {
		return nil, autherror.ErrInvalidIdentityToken
	}

	identity, err := s.identity.Verify(ctx, input.IdentityToken)
	if err != nil {
		if errors.Is(err, autherror.ErrIdentityProviderNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", autherror.ErrInvalidIdentityToken, err)
	}

	user, err := s.linkOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordLoginAttempt(ctx, identity.Email, input.IPAddress, domain.LoginSuccess); err != nil {
		return nil, fmt.Errorf("failed to record login attempt: %w", err)
	}

	// The session reflects the provider's current profile, not the stored name.
	if identity.Name != "" {
		user.Name = identity.Name
	}

	return s.issueSession(user)
}

func (s *AuthService) linkOrCreate(ctx context.Context, identity *domain.FederatedIdentity) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user, err = s.createFederatedUser(ctx, identity)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, autherror.ErrEmailAlreadyInUse) {
			return nil, err
		}

		// A concurrent login for the same new email won the insert.
		s.logger.Info("federated user created concurrently, linking instead",
			zap.String("email", identity.Email))
		user, err = s.repo.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %s missing after unique violation", identity.Email)
		}
	}

	if err := s.repo.LinkFederatedIdentity(ctx, user.ID, identity.Subject, identity.Picture); err != nil {
		return nil, fmt.Errorf("failed to link federated identity: %w", err)
	}
	user.FederatedID = identity.Subject
	user.AvatarURL = identity.Picture

	return user, nil
}

func (s *AuthService) createFederatedUser(ctx context.Context, identity *domain.FederatedIdentity) (*domain.User, error) {
	placeholder, err := unusablePassword()
	if err != nil {
		return nil, err
	}
	hashedPassword, err := s.hashPassword(placeholder)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         identity.Name,
		Email:        identity.Email,
		PasswordHash: hashedPassword,
		FederatedID:  identity.Subject,
		AvatarURL:    identity.Picture,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset stores a fresh code for email and mails it. The
// returned string is the code itself only when development echo is enabled,
// otherwise it is empty.
func (s *AuthService) RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) (string, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", autherror.ErrEmailNotFound
	}

	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	ttl := s.otpTTL()
	s.otps.Put(input.Email, domain.OTPEntry{
		Code:      code,
		ExpiresAt: s.now().Add(ttl),
	})

	// The stored code survives a failed dispatch.
	if err := s.notifier.SendPasswordReset(ctx, input.Email, code, ttl); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.String("email", input.Email), zap.Error(err))
		return "", fmt.Errorf("failed to send otp: %w", err)
	}

	if s.echoOTP() {
		return code, nil
	}
	return "", nil
}

func (s *AuthService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	if input.Email == "" || input.OTP == "" || input.NewPassword == "" {
		return autherror.ErrValidation
	}
	// Checked before the code so an over-long password does not consume it.
	if len(input.NewPassword) > MaxPasswordBytes {
		return autherror.ErrPasswordTooLong
	}

	entry, ok := s.otps.Get(input.Email)
	if !ok {
		return autherror.ErrOTPNotFound
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(input.OTP)) != 1 {
		return autherror.ErrOTPMismatch
	}

	if entry.Expired(s.now()) {
		s.otps.Delete(input.Email)
		return autherror.ErrOTPExpired
	}

	hashedPassword, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, input.Email, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.otps.Delete(input.Email)
	return nil
}

func (s *AuthService) VerifyToken(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, autherror.ErrInvalidToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherror.ErrInvalidToken, err)
	}
	return claims, nil
}

// Logout only acknowledges. Without a revocation list the token stays valid
// until it expires; the client is responsible for discarding it.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

func (s *AuthService) IdentityProviderClientID() (string, error) {
	if s.cfg == nil || s.cfg.GoogleClientID == "" {
		return "", autherror.ErrIdentityProviderNotConfigured
	}
	return s.cfg.GoogleClientID, nil
}

func (s *AuthService) issueSession(user *domain.User) (*dto.AuthResponse, error) {
	token, _, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success: true,
		Token:   token,
		User: dto.UserOutput{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Picture: user.AvatarURL,
		},
	}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if s.cfg != nil && s.cfg.BcryptCost != 0 {
		cost = s.cfg.BcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *AuthService) otpTTL() time.Duration {
	if s.cfg != nil && s.cfg.OTPTTL > 0 {
		return s.cfg.OTPTTL
	}
	return config.DefaultOTPTTL
}

func (s *AuthService) echoOTP() bool {
	return otpEchoCompiled && s.cfg != nil && s.cfg.IsDevelopment()
}

func unusablePassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
