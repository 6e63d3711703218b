package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/matteo/veloclub/internal/app/models"
	appRepos "github.com/matteo/veloclub/internal/app/repositories"
	"github.com/matteo/veloclub/internal/config"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

// CreateDefaultData ensures the club owner account exists. Every deployment
// needs exactly one owner to approve the first members and promote admins.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	ownerEmail := cfg.Seed.OwnerEmail
	if ownerEmail == "" {
		lgr.Warn().Msg("No owner email configured, skipping owner account creation")
		return nil
	}

	_, err := userRepo.FindByEmail(ctx, ownerEmail)
	if err == nil {
		lgr.Info().Str("email", ownerEmail).Msg("Owner account already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for owner account")
		return err
	}

	ownerPassword := cfg.Seed.OwnerPassword
	if ownerPassword == "" {
		lgr.Warn().Str("email", ownerEmail).Msg("No owner password configured, skipping owner account creation")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing owner password")
		return err
	}

	owner := &appModels.User{
		Email:     ownerEmail,
		Password:  string(hashedPassword),
		FirstName: "Club",
		LastName:  "Owner",
		Role:      appModels.RoleOwner,
		Approved:  true,
		IsActive:  true,
	}

	ownerID, err := userRepo.Create(ctx, owner)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating owner account")
		return err
	}

	lgr.Info().Int64("ownerID", ownerID).Str("email", ownerEmail).Msg("Owner account created")
	return nil
}
