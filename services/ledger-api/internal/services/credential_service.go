package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	tokenTypeBearer  = "bearer"
)

// Claims is the decoded content of a valid token.
type Claims struct {
	Subject  string
	Type     string
	IssuedAt time.Time
	Expiry   time.Time
}

type tokenClaims struct {
	Type string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// CredentialService hashes and verifies passwords and issues, decodes and renews signed tokens.
type CredentialService interface {
	HashPassword(plaintext string) (string, error)
	VerifyPassword(plaintext, hash string) bool
	Authenticate(ctx context.Context, traceId string, env pkg.Env, username, password string) (models.UserCredential, error)
	IssueAccessToken(username string, now time.Time) (string, error)
	IssueRefreshToken(username string, now time.Time) (string, error)
	IssueTokenPair(username string) (views.TokenPair, error)
	DecodeToken(token string, now time.Time) (Claims, error)
	RenewToken(claims Claims, now time.Time) (string, error)
	Refresh(traceId string, token string) (string, error)
	ResolveCurrentUser(ctx context.Context, traceId string, env pkg.Env, token string) (models.UserCredential, error)
}

// CredentialConfig is injected; the signing secret never has a default.
type CredentialConfig struct {
	Secret          []byte
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RenewTokenTTL   time.Duration
	BcryptCost      int
	Now             func() time.Time
}

type CredentialServiceImpl struct {
	logger   *zap.Logger
	cnf      CredentialConfig
	method   jwt.SigningMethod
	userRepo repositories.UserRepository
	lookups  singleflight.Group
}

func NewCredentialService(logger *zap.Logger, cnf CredentialConfig, userRepo repositories.UserRepository) (CredentialService, error) {
	if len(cnf.Secret) == 0 {
		return nil, errors.New("credential service: empty signing secret")
	}
	method := jwt.GetSigningMethod(cnf.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("credential service: unsupported signing algorithm %q", cnf.Algorithm)
	}
	if cnf.AccessTokenTTL <= 0 {
		cnf.AccessTokenTTL = 30 * time.Minute
	}
	if cnf.RefreshTokenTTL <= 0 {
		cnf.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cnf.RenewTokenTTL <= 0 {
		cnf.RenewTokenTTL = 15 * time.Minute
	}
	if cnf.BcryptCost == 0 {
		cnf.BcryptCost = bcrypt.DefaultCost
	}
	if cnf.Now == nil {
		cnf.Now = time.Now
	}
	return &CredentialServiceImpl{
		logger:   logger,
		cnf:      cnf,
		method:   method,
		userRepo: userRepo,
	}, nil
}

func (s *CredentialServiceImpl) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cnf.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", pkg.NewAppError(pkg.ErrInvalidInputCode, "password is too long", err)
		}
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to hash password", err)
	}
	return string(hash), nil
}

// VerifyPassword never returns an error; every failure reads as a mismatch.
func (s *CredentialServiceImpl) VerifyPassword(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		s.logger.Warn("password_verification_failed", zap.Error(err))
	}
	return false
}

func (s *CredentialServiceImpl) Authenticate(ctx context.Context, traceId string, env pkg.Env, username, password string) (models.UserCredential, error) {
	user, err := s.userRepo.FindByName(ctx, env, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("login_unknown_user", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, username))
			return models.UserCredential{}, pkg.NewAppError(pkg.ErrUnauthorizedCode, "incorrect username or password",
				errors.Join(pkg.ErrNotFound, pkg.ErrInvalidCredentials))
		}
		return models.UserCredential{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	if !s.VerifyPassword(password, user.HashedPassword) {
		s.logger.Info("login_wrong_password", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, username))
		return models.UserCredential{}, pkg.NewAppError(pkg.ErrUnauthorizedCode, "incorrect username or password", pkg.ErrInvalidCredentials)
	}
	if user.Disabled {
		return models.UserCredential{}, pkg.NewAppError(pkg.ErrInactiveUserCode, pkg.ErrInactiveUserCode.Message, nil)
	}
	return user, nil
}

func (s *CredentialServiceImpl) IssueAccessToken(username string, now time.Time) (string, error) {
	return s.sign(username, TokenTypeAccess, now, s.cnf.AccessTokenTTL)
}

func (s *CredentialServiceImpl) IssueRefreshToken(username string, now time.Time) (string, error) {
	return s.sign(username, TokenTypeRefresh, now, s.cnf.RefreshTokenTTL)
}

func (s *CredentialServiceImpl) IssueTokenPair(username string) (views.TokenPair, error) {
	now := s.cnf.Now()
	access, err := s.IssueAccessToken(username, now)
	if err != nil {
		return views.TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(username, now)
	if err != nil {
		return views.TokenPair{}, err
	}
	return views.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}

// DecodeToken verifies the signature before looking at exp, so only authentic tokens can report Expired.
func (s *CredentialServiceImpl) DecodeToken(token string, now time.Time) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.cnf.Secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, pkg.NewAppError(pkg.ErrTokenExpiredCode, pkg.ErrTokenExpiredCode.Message, errors.Join(pkg.ErrTokenExpired, err))
		}
		return Claims{}, pkg.NewAppError(pkg.ErrUnauthorizedCode, pkg.ErrUnauthorizedCode.Message, errors.Join(pkg.ErrTokenInvalid, err))
	}
	if claims.Subject == "" {
		return Claims{}, pkg.NewAppError(pkg.ErrUnauthorizedCode, pkg.ErrUnauthorizedCode.Message, pkg.ErrTokenInvalid)
	}

	decoded := Claims{Subject: claims.Subject, Type: claims.Type, Expiry: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	return decoded, nil
}

// RenewToken issues an access token for the same subject with the fixed renewal lifetime.
func (s *CredentialServiceImpl) RenewToken(claims Claims, now time.Time) (string, error) {
	return s.sign(claims.Subject, TokenTypeAccess, now, s.cnf.RenewTokenTTL)
}

func (s *CredentialServiceImpl) Refresh(traceId string, token string) (string, error) {
	now := s.cnf.Now()
	claims, err := s.DecodeToken(token, now)
	if err != nil {
		return "", err
	}
	renewed, err := s.RenewToken(claims, now)
	if err != nil {
		return "", err
	}
	s.logger.Info("token_renewed", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, claims.Subject))
	return renewed, nil
}

func (s *CredentialServiceImpl) ResolveCurrentUser(ctx context.Context, traceId string, env pkg.Env, token string) (models.UserCredential, error) {
	claims, err := s.DecodeToken(token, s.cnf.Now())
	if err != nil {
		return models.UserCredential{}, err
	}

	// Shared by every waiter on the key, so it ignores the first caller's cancellation.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := s.lookups.Do(string(env)+":"+claims.Subject, func() (interface{}, error) {
		return s.userRepo.FindByName(lookupCtx, env, claims.Subject)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("token_subject_not_found", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, claims.Subject))
			return models.UserCredential{}, pkg.NewAppError(pkg.ErrUnauthorizedCode, pkg.ErrUnauthorizedCode.Message, errors.Join(pkg.ErrNotFound, err))
		}
		return models.UserCredential{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	return v.(models.UserCredential), nil
}

func (s *CredentialServiceImpl) sign(subject, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(now.UTC().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.cnf.Secret)
	if err != nil {
		return "", pkg.NewAppError(pkg.ErrServerCode, "failed to sign token", err)
	}
	return signed, nil
}
