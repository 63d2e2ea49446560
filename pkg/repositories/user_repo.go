package repositories

import (
	"context"
	"strconv"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
)

const (
	fieldUserName           = "name"
	fieldUserHashedPassword = "hashed_password"
	fieldUserDisabled       = "disabled"
)

// UserRepository defines the interface for user credential repository.
type UserRepository interface {
	FindByName(ctx context.Context, env pkg.Env, name string) (models.UserCredential, error)
	Create(ctx context.Context, env pkg.Env, user models.UserCredential) error
	UpdatePassword(ctx context.Context, env pkg.Env, name, hashedPassword string) error
	Delete(ctx context.Context, env pkg.Env, name string) error
}

type UserRepositoryImpl struct {
	store store.Store
}

func NewUserRepository(s store.Store) UserRepository {
	return &UserRepositoryImpl{store: s}
}

func (u UserRepositoryImpl) namespace(env pkg.Env) store.Namespace {
	return namespaceFor(env, store.NamespaceUsers, store.NamespaceUsersTest)
}

func (u UserRepositoryImpl) FindByName(ctx context.Context, env pkg.Env, name string) (models.UserCredential, error) {
	item, err := u.store.Get(ctx, u.namespace(env), name)
	if err != nil {
		return models.UserCredential{}, err
	}
	user := models.UserCredential{
		Name:           item[fieldUserName],
		HashedPassword: item[fieldUserHashedPassword],
	}
	if user.Name == "" {
		user.Name = name
	}
	// Records written before the disabled flag existed are active.
	if raw, ok := item[fieldUserDisabled]; ok && raw != "" {
		disabled, err := strconv.ParseBool(raw)
		if err != nil {
			return models.UserCredential{}, malformed(fieldUserDisabled, err)
		}
		user.Disabled = disabled
	}
	return user, nil
}

func (u UserRepositoryImpl) Create(ctx context.Context, env pkg.Env, user models.UserCredential) error {
	return u.store.Create(ctx, u.namespace(env), user.Name, store.Item{
		fieldUserName:           user.Name,
		fieldUserHashedPassword: user.HashedPassword,
		fieldUserDisabled:       strconv.FormatBool(user.Disabled),
	})
}

func (u UserRepositoryImpl) UpdatePassword(ctx context.Context, env pkg.Env, name, hashedPassword string) error {
	return u.store.Update(ctx, u.namespace(env), name, store.Item{fieldUserHashedPassword: hashedPassword})
}

func (u UserRepositoryImpl) Delete(ctx context.Context, env pkg.Env, name string) error {
	return u.store.Delete(ctx, u.namespace(env), name)
}
