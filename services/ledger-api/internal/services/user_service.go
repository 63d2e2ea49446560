package services

import (
	"context"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"go.uber.org/zap"
)

// UserService manages credential records.
type UserService interface {
	CreateUser(ctx context.Context, traceId string, env pkg.Env, name, password string) (models.User, error)
	GetUser(ctx context.Context, traceId string, env pkg.Env, name string) (models.User, error)
	UpdatePassword(ctx context.Context, traceId string, env pkg.Env, name, password string) (models.User, error)
	DeleteUser(ctx context.Context, traceId string, env pkg.Env, name string) error
}

type UserServiceImpl struct {
	logger      *zap.Logger
	credentials CredentialService
	userRepo    repositories.UserRepository
}

func NewUserService(logger *zap.Logger, credentials CredentialService, userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{logger: logger, credentials: credentials, userRepo: userRepo}
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, traceId string, env pkg.Env, name, password string) (models.User, error) {
	hash, err := u.credentials.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user := models.UserCredential{Name: name, HashedPassword: hash}
	if err := u.userRepo.Create(ctx, env, user); err != nil {
		return models.User{}, pkg.HandleStoreError(traceId, u.logger, err)
	}
	u.logger.Info("user_created", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, name),
		zap.String(pkg.Environment, string(env)))
	return user.Public(), nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, traceId string, env pkg.Env, name string) (models.User, error) {
	user, err := u.userRepo.FindByName(ctx, env, name)
	if err != nil {
		return models.User{}, pkg.HandleStoreError(traceId, u.logger, err)
	}
	return user.Public(), nil
}

func (u *UserServiceImpl) UpdatePassword(ctx context.Context, traceId string, env pkg.Env, name, password string) (models.User, error) {
	hash, err := u.credentials.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	if err := u.userRepo.UpdatePassword(ctx, env, name, hash); err != nil {
		return models.User{}, pkg.HandleStoreError(traceId, u.logger, err)
	}
	return u.GetUser(ctx, traceId, env, name)
}

func (u *UserServiceImpl) DeleteUser(ctx context.Context, traceId string, env pkg.Env, name string) error {
	if _, err := u.userRepo.FindByName(ctx, env, name); err != nil {
		return pkg.HandleStoreError(traceId, u.logger, err)
	}
	if err := u.userRepo.Delete(ctx, env, name); err != nil {
		return pkg.HandleStoreError(traceId, u.logger, err)
	}
	u.logger.Info("user_deleted", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, name))
	return nil
}
