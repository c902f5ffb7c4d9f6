package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fieldpay/internal/domain/auth"
	"fieldpay/internal/platform/config"
)

type RateSeeder interface {
	SeedDefaults(ctx context.Context) (int, error)
}

type UserSeeder interface {
	EnsureUser(ctx context.Context, in auth.NewUser) (bool, error)
}

// Seed installs the default rate card and, when configured, the first admin.
// Both steps are idempotent.
func Seed(ctx context.Context, cfg config.Config, rates RateSeeder, users UserSeeder) error {
	inserted, err := rates.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if inserted > 0 {
		slog.Info("seeded rate card", "entries", inserted)
	}

	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" {
		return nil
	}
	created, err := users.EnsureUser(ctx, auth.NewUser{
		Email:    email,
		Name:     "Administrator",
		Role:     auth.RoleAdmin,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		slog.Info("seeded admin user", "email", email)
	}
	return nil
}
