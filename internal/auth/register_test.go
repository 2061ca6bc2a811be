package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/internal/users"
	"github.com/anandkhatri/ledgerbook-backend/pkg/config"
	pkgmodels "github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserRepository struct {
	data      map[string]*pkgmodels.User
	created   *pkgmodels.User
	createErr error
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*pkgmodels.User{}}
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func newRegisterTestService(t *testing.T, userRepo *stubUserRepository) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubTxRunner{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return userRepo
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	userRepo := newStubUserRepository()
	svc := newRegisterTestService(t, userRepo)

	err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Anand Khatri",
		Email:    "New@Example.com",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if userRepo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if userRepo.created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %s", userRepo.created.Email)
	}
	if userRepo.created.PasswordHash == "" || userRepo.created.PasswordHash == "Secret123!" {
		t.Fatalf("expected password to be hashed")
	}
	if !userRepo.created.IsActive {
		t.Fatalf("expected new user to be active")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := newStubUserRepository()
	userRepo.data["taken@example.com"] = &pkgmodels.User{
		ID:    uuid.New(),
		Email: "taken@example.com",
	}
	svc := newRegisterTestService(t, userRepo)

	err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Someone Else",
		Email:    "taken@example.com",
		Password: "Secret123!",
	})
	if err == nil {
		t.Fatalf("expected conflict for duplicate email")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
