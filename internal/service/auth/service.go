package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/pkg/auth"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/logger"
)

// Service implements registration, login and token refresh.
type Service struct {
	users  repository.UserRepository
	tokens auth.TokenService
	logger *logger.Logger
}

func NewService(users repository.UserRepository, tokens auth.TokenService, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: log}
}

// Register creates an account and, for professionals, its business profile.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var profession model.ServiceCategory
	if req.Role == model.UserRoleProfessional {
		if req.CompanyName == "" {
			return nil, apperrors.BadRequest("company_name is required for professionals", nil)
		}
		profession = model.ServiceCategory(req.Profession)
		if !model.ValidCategory(profession) {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown profession %q", req.Profession), nil)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, apperrors.Internal(err)
	}

	if req.Role == model.UserRoleProfessional {
		profile := &model.ProfessionalProfile{
			UserID:      user.ID,
			CompanyName: req.CompanyName,
			Siret:       req.Siret,
			Profession:  profession,
			Bio:         req.Bio,
		}
		if err := s.users.CreateProfile(ctx, profile); err != nil {
			return nil, apperrors.Internal(err)
		}
		user.Profile = profile
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "role", string(user.Role))
	return s.issueTokens(user)
}

// Login verifies credentials against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.Unauthorized("invalid credentials", nil)
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenResponse, error) {
	userID, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.Unauthorized("account no longer exists", err)
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated", nil)
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
