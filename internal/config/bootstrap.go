package config

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/app"
	"github.com/Tejas3545/project-hub-sub001/internal/auth"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

// Bootstrap seeds catalog domains and admin accounts from the config file.
// Seeding is idempotent: existing rows are left alone on every run.
func Bootstrap(ctx context.Context, cfg *Config, store storage.Store) error {
	for _, d := range cfg.Domains {
		slug := app.Slugify(d.Name)
		if _, err := store.GetDomainBySlug(ctx, slug); err == nil {
			continue
		} else if !errors.Is(err, hub.ErrNotFound) {
			return err
		}
		dom := &hub.Domain{
			ID:          uuid.Must(uuid.NewV7()).String(),
			Slug:        slug,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.CreateDomain(ctx, dom); err != nil {
			return err
		}
		slog.Info("bootstrapped domain", "slug", slug)
	}

	for _, a := range cfg.Admins {
		if a.Username == "" || a.Password == "" {
			continue
		}
		if _, err := store.GetUserByUsername(ctx, a.Username); err == nil {
			continue
		} else if !errors.Is(err, hub.ErrNotFound) {
			return err
		}
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return err
		}
		u := &hub.User{
			ID:           uuid.Must(uuid.NewV7()).String(),
			Username:     a.Username,
			Email:        a.Email,
			PasswordHash: hash,
			Role:         hub.RoleAdmin,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.CreateUser(ctx, u); err != nil {
			return err
		}
		slog.Info("bootstrapped admin", "username", a.Username)
	}

	return nil
}
