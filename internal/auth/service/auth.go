package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/blacklist"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/jwt"
	"github.com/pulsmedic/pulsmedic-backend/internal/auth/repository"
	profiledomain "github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	profilerepo "github.com/pulsmedic/pulsmedic-backend/internal/profile/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles sign-up, sign-in and session lifecycle
type AuthService struct {
	db         *database.DB
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	profiles   *profilerepo.ProfileRepository
	jwtManager *jwt.Manager
	blacklist  blacklist.TokenBlacklist
	publisher  messaging.EventPublisher
	logger     *logger.Logger
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *database.DB,
	jwtManager *jwt.Manager,
	bl blacklist.TokenBlacklist,
	publisher messaging.EventPublisher,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		db:         db,
		users:      repository.NewUserRepository(db),
		sessions:   repository.NewSessionRepository(db),
		profiles:   profilerepo.NewProfileRepository(db),
		jwtManager: jwtManager,
		blacklist:  bl,
		publisher:  publisher,
		logger:     log.WithComponent("auth"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// SignUpRequest represents a self-service registration
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,max=200"`
}

// SignInRequest represents a sign-in request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token to rotate
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SignOutRequest optionally names the session to revoke
type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateAccountRequest creates a user together with its profile
type CreateAccountRequest struct {
	Email          string           `json:"email" validate:"required,email,max=255"`
	Password       string           `json:"password" validate:"required,min=6,max=72"`
	FullName       string           `json:"full_name" validate:"required,max=200"`
	Role           permissions.Role `json:"role" validate:"required,oneof=admin doctor nurse receptionist"`
	Phone          *string          `json:"phone" validate:"omitempty,max=50"`
	Specialization *string          `json:"specialization" validate:"omitempty,max=200"`
	LicenseNumber  *string          `json:"license_number" validate:"omitempty,max=100"`
}

// ClientInfo describes the device a session is opened from
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthResponse is returned by sign-up, sign-in and refresh
type AuthResponse struct {
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	ExpiresAt    time.Time              `json:"expires_at"`
	TokenType    string                 `json:"token_type"`
	Profile      *profiledomain.Profile `json:"profile"`
}

// MeResponse describes the signed-in user
type MeResponse struct {
	UserID  string                 `json:"user_id"`
	Email   string                 `json:"email"`
	Profile *profiledomain.Profile `json:"profile"`
}

// CreateAccount creates a user and its profile in one transaction.
// createdBy is the acting admin's profile ID, empty for self sign-up.
func (s *AuthService) CreateAccount(ctx context.Context, req *CreateAccountRequest, createdBy string) (*profiledomain.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	profile := &profiledomain.Profile{
		Email:          email,
		FullName:       &fullName,
		Role:           req.Role,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		LicenseNumber:  req.LicenseNumber,
		IsActive:       true,
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.Create(ctx, tx, email, string(hash))
		if err != nil {
			return err
		}
		profile.UserID = user.ID
		return s.profiles.Create(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, messaging.EventProfileCreated, messaging.EntityEvent{
		ID:      profile.ID,
		ActorID: createdBy,
	}); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profile.ID).Msg("failed to publish profile created event")
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("role", string(profile.Role)).
		Msg("account created")

	return profile, nil
}

// SignUp registers a receptionist account and signs it in
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest, client ClientInfo) (*AuthResponse, error) {
	profile, err := s.CreateAccount(ctx, &CreateAccountRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     permissions.RoleReceptionist,
	}, "")
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, profile, client)
}

// SignIn verifies the password and opens a new session
func (s *AuthService) SignIn(ctx context.Context, req *SignInRequest, client ClientInfo) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, errors.AccountInactive()
	}

	return s.openSession(ctx, profile, client)
}

// Refresh rotates the refresh token of a live session and issues a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetActive(ctx, claims.SessionID, refreshToken)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.TokenRevoked()
		}
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		if err := s.sessions.Revoke(ctx, session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to revoke session")
		}
		return nil, errors.AccountInactive()
	}

	tokens, err := s.jwtManager.GenerateTokenPair(tokenInfo(profile), session.ID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}
	if err := s.sessions.Rotate(ctx, session.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return authResponse(tokens, profile), nil
}

// SignOut blacklists the current access token and revokes the session the
// refresh token belongs to, if one is given.
func (s *AuthService) SignOut(ctx context.Context, a *actor.Actor, refreshToken string) error {
	if a == nil {
		return errors.Unauthorized("not authenticated")
	}

	if a.TokenID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, a.TokenID, s.jwtManager.GetTokenExpiry()); err != nil {
			s.logger.Error().Err(err).Msg("failed to blacklist access token")
			return errors.Internal("failed to sign out")
		}
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		// An expired or foreign refresh token leaves nothing to revoke
		return nil
	}
	if claims.UserID != a.UserID {
		return errors.Forbidden("refresh token belongs to another user")
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", claims.SessionID).Msg("failed to revoke session")
	}
	return nil
}

// Me returns the signed-in user's current profile
func (s *AuthService) Me(ctx context.Context, a *actor.Actor) (*MeResponse, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}

	profile, err := s.profiles.GetByID(ctx, a.ProfileID)
	if err != nil {
		return nil, err
	}

	return &MeResponse{
		UserID:  a.UserID,
		Email:   a.Email,
		Profile: profile,
	}, nil
}

// Authenticate resolves the actor behind an access token. The profile is
// re-read on every request so role changes and deactivation apply at once.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*actor.Actor, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check token blacklist")
		return nil, errors.Internal("failed to verify token")
	}
	if revoked {
		return nil, errors.TokenRevoked()
	}

	profile, err := s.profiles.GetByID(ctx, claims.ProfileID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.TokenInvalid()
		}
		return nil, err
	}

	a := &actor.Actor{
		UserID:    claims.UserID,
		ProfileID: profile.ID,
		Email:     profile.Email,
		FullName:  profile.DisplayName(),
		Role:      profile.Role,
		IsActive:  profile.IsActive,
		TokenID:   claims.ID,
	}
	if !a.IsActive {
		return a, errors.AccountInactive()
	}
	return a, nil
}

func (s *AuthService) openSession(ctx context.Context, profile *profiledomain.Profile, client ClientInfo) (*AuthResponse, error) {
	sessionID := uuid.New().String()

	tokens, err := s.jwtManager.GenerateTokenPair(tokenInfo(profile), sessionID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	expiresAt := time.Now().Add(s.jwtManager.GetRefreshExpiry())
	if err := s.sessions.Create(ctx, sessionID, profile.UserID, tokens.RefreshToken, expiresAt, client.UserAgent, client.IPAddress); err != nil {
		s.logger.Error().Err(err).Msg("failed to create session")
		return nil, errors.Internal("failed to create session")
	}

	return authResponse(tokens, profile), nil
}

func tokenInfo(p *profiledomain.Profile) *jwt.UserInfo {
	return &jwt.UserInfo{
		UserID:    p.UserID,
		ProfileID: p.ID,
		Email:     p.Email,
		Role:      string(p.Role),
	}
}

func authResponse(tokens *jwt.TokenPair, p *profiledomain.Profile) *AuthResponse {
	return &AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TokenType:    tokens.TokenType,
		Profile:      p,
	}
}
