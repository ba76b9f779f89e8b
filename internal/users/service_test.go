package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ms-registration/internal/auth"
	"ms-registration/internal/models"
	"ms-registration/internal/users"
)

// MockUserDB is a hand-rolled mock of the UserDBLayer interface.
type MockUserDB struct {
	users map[string]*models.User // keyed by id
}

func NewMockUserDB() *MockUserDB {
	return &MockUserDB{users: make(map[string]*models.User)}
}

func (m *MockUserDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MockUserDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserDB) CreateUser(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserDB) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserDB) ListUsers(_ context.Context) ([]models.User, error) {
	var list []models.User
	for _, user := range m.users {
		list = append(list, *user)
	}
	return list, nil
}

func (m *MockUserDB) DeleteUserCascade(_ context.Context, id string) error {
	if _, exists := m.users[id]; !exists {
		return models.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func newService(db *MockUserDB) *users.UserService {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return users.NewUserService(db, issuer)
}

func signupRequest(email, role string) models.SignupRequest {
	return models.SignupRequest{
		Name:     "Test User",
		Email:    email,
		Password: "securepassword",
		Role:     role,
	}
}

func TestSignupHashesPassword(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	user, err := svc.Signup(context.Background(), signupRequest("test@example.com", "participant"))
	require.NoError(t, err)
	require.Equal(t, models.RoleParticipant, user.Role)
	require.NotEqual(t, "securepassword", user.HashedPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("securepassword")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	_, err := svc.Signup(context.Background(), signupRequest("duplicate@example.com", "admin"))
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupRequest("duplicate@example.com", "admin"))
	require.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestSignupUnknownRole(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	for _, role := range []string{"superuser", "organizer", ""} {
		_, err := svc.Signup(context.Background(), signupRequest("test@example.com", role))
		require.ErrorIs(t, err, models.ErrUnknownRole, "role %q must be rejected as unknown", role)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	_, err := svc.Signup(context.Background(), signupRequest("login@example.com", "participant"))
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "login@example.com", "securepassword")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	email, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "login@example.com", email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	_, err := svc.Signup(context.Background(), signupRequest("login@example.com", "participant"))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "login@example.com", "wrongpassword")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	// An unknown email is indistinguishable from a wrong password.
	_, err = svc.Login(context.Background(), "nobody@example.com", "securepassword")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestListUsersAdminOnly(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	_, err := svc.Signup(context.Background(), signupRequest("a@example.com", "participant"))
	require.NoError(t, err)

	_, err = svc.ListUsers(context.Background(), &models.Identity{Role: models.RoleOrganizer})
	require.ErrorIs(t, err, models.ErrForbidden)

	list, err := svc.ListUsers(context.Background(), &models.Identity{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRemoveOrganizer(t *testing.T) {
	db := NewMockUserDB()
	svc := newService(db)

	organizer, err := svc.Signup(context.Background(), signupRequest("org@example.com", "event_organizer"))
	require.NoError(t, err)
	participant, err := svc.Signup(context.Background(), signupRequest("user@example.com", "participant"))
	require.NoError(t, err)

	adminIdentity := &models.Identity{UserID: "admin-1", Role: models.RoleAdmin}

	// Only admins may remove organizers.
	_, err = svc.RemoveOrganizer(context.Background(), &models.Identity{Role: models.RoleOrganizer}, organizer.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	// Removing a non-organizer surfaces as not found.
	_, err = svc.RemoveOrganizer(context.Background(), adminIdentity, participant.ID)
	require.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = svc.RemoveOrganizer(context.Background(), adminIdentity, "missing-id")
	require.ErrorIs(t, err, models.ErrUserNotFound)

	removed, err := svc.RemoveOrganizer(context.Background(), adminIdentity, organizer.ID)
	require.NoError(t, err)
	require.Equal(t, organizer.ID, removed.ID)

	_, err = svc.RemoveOrganizer(context.Background(), adminIdentity, organizer.ID)
	require.ErrorIs(t, err, models.ErrUserNotFound)
}
