package authController

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"questlog/internal/apperrors"
	"questlog/internal/models"
	"questlog/internal/repositories"
	"questlog/internal/services"
	"questlog/internal/types"
	"questlog/pkg/logger"
)

// AuthController bridges the external identity provider and local user rows.
// The provider owns authentication; this controller only validates tokens and
// provisions users on first login.
type AuthController struct {
	identityService *services.IdentityService
	userRepo        repositories.UserRepository
	log             logger.Logger
}

type AuthControllerInterface interface {
	ValidateToken(ctx context.Context, idToken string) (*models.User, error)
	GetCurrentUserProfile(user *models.User) models.UserProfile
}

func New(services services.Service, repos repositories.Repository) AuthControllerInterface {
	return &AuthController{
		identityService: services.Identity,
		userRepo:        repos.User,
		log:             logger.New("authController"),
	}
}

// ValidateToken verifies an ID token and returns the local user it maps to,
// creating the user on first login.
func (c *AuthController) ValidateToken(ctx context.Context, idToken string) (*models.User, error) {
	log := c.log.Function("ValidateToken")

	if idToken == "" {
		return nil, fmt.Errorf("%w: missing token", apperrors.ErrUnauthorized)
	}

	tokenInfo, err := c.identityService.ValidateIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	user, err := c.getOrCreateUser(ctx, tokenInfo)
	if err != nil {
		return nil, log.Err("failed to resolve user from token", err, "oidcUserID", tokenInfo.UserID)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", apperrors.ErrUnauthorized)
	}

	return user, nil
}

func (c *AuthController) GetCurrentUserProfile(user *models.User) models.UserProfile {
	return user.ToProfile()
}

// getOrCreateUser finds the local user for verified OIDC claims, provisioning
// one on first login and refreshing profile fields on every session.
func (c *AuthController) getOrCreateUser(
	ctx context.Context,
	tokenInfo *types.TokenInfo,
) (*models.User, error) {
	log := c.log.Function("getOrCreateUser")

	firstName := tokenInfo.FirstName
	lastName := tokenInfo.LastName
	if firstName == "" && tokenInfo.Name != nil {
		names := strings.Fields(*tokenInfo.Name)
		if len(names) > 0 {
			firstName = names[0]
		}
		if len(names) > 1 {
			lastName = strings.Join(names[1:], " ")
		}
	}

	user, err := c.userRepo.GetByOIDCUserID(ctx, tokenInfo.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		user = &models.User{
			FirstName: firstName,
			LastName:  lastName,
			IsActive:  true,
		}
		user.UpdateFromClaims(tokenInfo.UserID, tokenInfo.Email, firstName, lastName, tokenInfo.EmailVerified)

		if err := c.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}

		log.Info("Provisioned user from first login", "userID", user.ID)
		return user, nil
	}

	user.UpdateFromClaims(tokenInfo.UserID, tokenInfo.Email, firstName, lastName, tokenInfo.EmailVerified)
	if err := c.userRepo.Update(ctx, user); err != nil {
		log.Warn("failed to refresh user profile from claims", "userID", user.ID, "error", err)
	}

	return user, nil
}
