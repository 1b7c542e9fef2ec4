package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/server/auth"
	"github.com/robodoc-one/gateway/internal/server/config"
	"github.com/robodoc-one/gateway/internal/server/models"
)

// --- helpers ---

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
	}
}

// memUsersRepo is an in-memory repository with the same uniqueness semantics
// the Postgres unique index provides.
type memUsersRepo struct {
	mu      sync.Mutex
	nextID  int
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrDuplicateUser
	}
	r.nextID++
	stored := &models.User{
		ID:           fmt.Sprintf("u-%d", r.nextID),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Now(),
	}
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored
	return stored, nil
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memUsersRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
}

// --- tests ---

func TestRegisterLoginResolve_RoundTrip(t *testing.T) {
	repo := newMemUsersRepo()
	s := NewUserService(repo, newTestConfig())
	ctx := context.Background()

	u, regToken, err := s.Register(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.PasswordHash == "s3cret" {
		t.Fatalf("password stored in plaintext")
	}

	got, err := s.ResolveUser(ctx, regToken)
	if err != nil {
		t.Fatalf("ResolveUser(registration token) error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("registration token resolves to %q, want %q", got.ID, u.ID)
	}

	loginToken, err := s.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	got, err = s.ResolveUser(ctx, loginToken)
	if err != nil {
		t.Fatalf("ResolveUser(login token) error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login token resolves to %q, want %q", got.ID, u.ID)
	}
}

func TestRegister_EmptyInput(t *testing.T) {
	s := NewUserService(newMemUsersRepo(), newTestConfig())

	if _, _, err := s.Register(context.Background(), "", "pw"); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected common.ErrValidation for empty email, got %v", err)
	}
	if _, _, err := s.Register(context.Background(), "a@b.c", ""); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected common.ErrValidation for empty password, got %v", err)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	repo := newMemUsersRepo()
	s := NewUserService(repo, newTestConfig())

	const n = 8
	errs := make(chan error, n)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			start.Wait()
			_, _, err := s.Register(context.Background(), "race@example.com", "pw")
			errs <- err
		}()
	}
	start.Done()
	done.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrDuplicateUser):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != n-1 {
		t.Fatalf("expected exactly one success, got ok=%d dup=%d", ok, dup)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMemUsersRepo()
	s := NewUserService(repo, newTestConfig())
	ctx := context.Background()

	if _, _, err := s.Register(ctx, "bob@example.com", "right-pw"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := s.Login(ctx, "bob@example.com", "wrong-pw"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("expected common.ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "ghost@example.com", "whatever"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("expected common.ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestResolveUser_MissingToken(t *testing.T) {
	s := NewUserService(newMemUsersRepo(), newTestConfig())

	if _, err := s.ResolveUser(context.Background(), ""); !errors.Is(err, common.ErrMissingToken) {
		t.Fatalf("expected common.ErrMissingToken, got %v", err)
	}
}

func TestResolveUser_ExpiredToken(t *testing.T) {
	s := NewUserService(newMemUsersRepo(), newTestConfig())

	tok, err := auth.GenerateToken("u-1", []byte("k"), -time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := s.ResolveUser(context.Background(), tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestResolveUser_UnknownUser(t *testing.T) {
	repo := newMemUsersRepo()
	s := NewUserService(repo, newTestConfig())
	ctx := context.Background()

	u, tok, err := s.Register(ctx, "gone@example.com", "pw")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// Account removed between issuance and the next request.
	repo.delete(u.ID)

	if _, err := s.ResolveUser(ctx, tok); !errors.Is(err, common.ErrUnknownUser) {
		t.Fatalf("expected common.ErrUnknownUser, got %v", err)
	}
}
