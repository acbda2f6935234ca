package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"gorm.io/gorm"
)

type adminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	UpdateCredentials(ctx context.Context, id int64, passwordHash string, role enums.UserRole) error
}

// EnsureAdmin creates the configured admin account, or promotes and re-keys an
// existing account with the same email. It does nothing when bootstrap is off.
func EnsureAdmin(ctx context.Context, repo adminStore, cfg config.BootstrapConfig, pwd config.PasswordConfig, logg *logger.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	if repo == nil {
		return fmt.Errorf("user repository is required")
	}

	hash, err := security.HashPassword(cfg.AdminPassword, pwd)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	email := users.NormalizeEmail(cfg.AdminEmail)
	ctx = logg.WithField(ctx, "admin_email", email)

	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := repo.UpdateCredentials(ctx, existing.ID, hash, enums.UserRoleAdmin); err != nil {
			return fmt.Errorf("update bootstrap admin: %w", err)
		}
		logg.Info(ctx, "bootstrap admin updated")
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	if _, err := repo.Create(ctx, users.CreateUserDTO{
		Name:         cfg.AdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logg.Info(ctx, "bootstrap admin created")
	return nil
}
