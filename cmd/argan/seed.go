package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arganhq/argan/internal/auth"
	"github.com/arganhq/argan/internal/config"
	"github.com/arganhq/argan/internal/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an admin account and a demo agency",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedAccounts = []struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
}{
	{
		Name:     "Admin",
		Email:    "admin@argan.com",
		Password: "admin-change-me",
		Role:     user.RoleAdmin,
	},
	{
		Name:     "Demo Agency",
		Email:    "agency@argan.com",
		Password: "agency-change-me",
		Role:     user.RoleAgency,
	},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := user.NewStore(pool)

	for _, acct := range seedAccounts {
		email := user.NormalizeEmail(acct.Email)

		if _, err := store.GetByEmailAndRole(ctx, email, acct.Role); err == nil {
			slog.Info("account already exists, skipping", "email", email, "role", acct.Role)
			continue
		} else if !errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("checking existing account %q: %w", email, err)
		}

		hash, err := auth.HashPassword(acct.Password)
		if err != nil {
			return fmt.Errorf("hashing password for %q: %w", email, err)
		}

		u, err := store.Create(ctx, user.CreateUserInput{
			Name:         acct.Name,
			Email:        email,
			PasswordHash: hash,
			Role:         acct.Role,
		})
		if err != nil {
			return fmt.Errorf("creating account %q: %w", email, err)
		}

		// Seeded accounts skip the email verification flow.
		if err := store.MarkEmailVerified(ctx, u.ID); err != nil {
			return fmt.Errorf("verifying account %q: %w", email, err)
		}

		slog.Info("created account", "email", u.Email, "role", u.Role, "id", u.ID)
		fmt.Printf("Account:  %s (%s)\nPassword: %s\n\n", u.Email, u.Role, acct.Password)
	}

	return nil
}
