package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/corpcare/agentbooking/internal/adapters/database"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const minAdminPassword = 12

// newAdminUser validates the credentials and builds an active ADMIN user
func newAdminUser(email, password string, hasher providers.PasswordHasher, now time.Time) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid --email is required")
	}
	if len(password) < minAdminPassword {
		return nil, apperrors.NewValidationError("--password must be at least 12 characters")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}
	return &entities.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         entities.UserRoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func createAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newAdminUser(email, password, auth.NewBcryptHasher(0), time.Now().UTC())
			if err != nil {
				return err
			}

			_, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := database.NewUserAdapter(client).Create(cmd.Context(), user); err != nil {
				return err
			}
			log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin login email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
