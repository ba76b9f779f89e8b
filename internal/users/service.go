package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ms-registration/internal/auth"
	"ms-registration/internal/models"
)

type UserDBLayer interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUserCascade(ctx context.Context, id string) error
}

type UserService struct {
	DB     UserDBLayer
	Issuer *auth.TokenIssuer
}

func NewUserService(db UserDBLayer, issuer *auth.TokenIssuer) *UserService {
	return &UserService{DB: db, Issuer: issuer}
}

// Signup registers a new account. Emails are matched exactly as stored and
// the plaintext password is hashed before it touches the store.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrInvalidCredentials)
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	taken, err := s.DB.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, models.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.DB.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	token, err := s.Issuer.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *UserService) ListUsers(ctx context.Context, caller *models.Identity) ([]models.User, error) {
	if !caller.Role.May(models.ActionListAllUsers) {
		return nil, models.ErrForbidden
	}
	return s.DB.ListUsers(ctx)
}

// RemoveOrganizer deletes an organizer account and cascades their
// enrollments. Targets that exist but are not organizers surface as not
// found, same as missing ids.
func (s *UserService) RemoveOrganizer(ctx context.Context, caller *models.Identity, userID string) (*models.User, error) {
	if !caller.Role.May(models.ActionRemoveOrganizer) {
		return nil, models.ErrForbidden
	}

	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleOrganizer {
		return nil, models.ErrUserNotFound
	}

	if err := s.DB.DeleteUserCascade(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete organizer: %w", err)
	}
	return user, nil
}
