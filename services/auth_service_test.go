package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = len(f.users) + 1
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func newUserRepoWithAccount(t *testing.T, email, password string) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &fakeUserRepo{users: map[int]*models.User{
		1: {ID: 1, Name: "Ana", Email: email, PasswordHash: string(hash)},
	}}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{users: map[int]*models.User{}})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "ab",
		Email:    "not-an-email",
		Password: "12345",
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"nombre", "email", "password"} {
		if _, ok := validationErr.Fields[field]; !ok {
			t.Errorf("expected a %s field error, got %v", field, validationErr.Fields)
		}
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &fakeUserRepo{users: map[int]*models.User{}}
	svc := NewAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secreta123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.PasswordHash == "secreta123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreta123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
	if stored.IsAdmin {
		t.Error("new accounts must not be admins")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newUserRepoWithAccount(t, "ana@example.com", "secreta123")
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Otra Ana",
		Email:    "ana@example.com",
		Password: "secreta123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newUserRepoWithAccount(t, "ana@example.com", "secreta123")
	svc := NewAuthService(repo)

	user, err := svc.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "secreta123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked into login response")
	}

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "incorrecta",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "nadie@example.com",
		Password: "secreta123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
