package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_order/internal/hash"
	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/mykafka"
	"github.com/Skotchmaster/food_order/internal/repo"
	"github.com/Skotchmaster/food_order/internal/tokens"
)

var knownRoles = []string{models.RoleUser, models.RoleAdmin}

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        EventPublisher
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: pwHash, Roles: models.RoleUser}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: user already exist", ErrConflict)
		}
		l.Error("register_error", "reason", "db_error", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		l.Error("login_error", "reason", "db_error", "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		l.Error("login_error", "reason", "cannot issue tokens", "error", err)
		return nil, err
	}
	return res, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessExp := time.Now().Add(tokens.AccessTTL)
	access, err := tokens.SignAccess(user.ID.String(), user.Email, user.RoleList(), accessExp, s.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refresh, jti, err := tokens.SignRefresh(user.ID.String(), refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefresh(ctx, &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		Token:     tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Refresh trades a live refresh token for a new pair. The old refresh token
// is revoked in the same transaction that stores the new one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	accessExp := time.Now().Add(tokens.AccessTTL)
	access, err := tokens.SignAccess(user.ID.String(), user.Email, user.RoleList(), accessExp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refresh, jti, err := tokens.SignRefresh(user.ID.String(), refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	next := &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		Token:     tokens.Sha256Hex(refresh),
		ExpiresAt: refreshExp.Unix(),
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_rejected", "user_id", user.ID, "jti", claims.ID)
			return nil, fmt.Errorf("%w: token expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefresh(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, err
}

// CurrentRoles reads the stored roles of a user, ignoring what their tokens
// claim.
func (s *AuthService) CurrentRoles(ctx context.Context, userID string) ([]string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", ErrUnauthorized)
	}
	user, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.RoleList(), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AuthService) SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles := slices.DeleteFunc(user.RoleList(), func(r string) bool { return r == models.RoleAdmin })
	if isAdmin {
		roles = append(roles, models.RoleAdmin)
	}
	return s.SetRoles(ctx, userID, roles)
}

// SetRoles replaces the roles of a user. The user role is always kept.
func (s *AuthService) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) (*models.User, error) {
	for _, r := range roles {
		if !slices.Contains(knownRoles, r) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, r)
		}
	}

	user, err := s.Repo.UpdateRoles(ctx, userID, roles)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "roles_updated",
		"user_id": user.ID.String(),
		"roles":   user.RoleList(),
	})
	return user, nil
}
