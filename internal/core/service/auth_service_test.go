package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	creates int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	r.creates++
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "user-" + copy.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

const testSecret = "secret"

func newTestAuthService(repo *stubUserRepo, cfg AuthConfig) (*AuthService, *session.MemoryStore) {
	store := session.NewMemoryStore()
	sessions := NewSessionService(store, session.DefaultPolicy, zerolog.Nop())
	cfg.JWTSecret = testSecret
	cfg.BcryptCost = bcrypt.MinCost
	if cfg.Admins == nil {
		cfg.Admins = domain.AdminList{"admin@arielspace.com", "admin@example.com"}
	}
	return NewAuthService(repo, sessions, cfg, zerolog.Nop()), store
}

func signupInput(email string) ports.SignupInput {
	return ports.SignupInput{Email: email, Password: "pass123", FirstName: "Ada", LastName: "Lovelace"}
}

func TestAuthService_Signup_HashesPasswordAndAssignsRole(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	user, err := svc.Signup(context.Background(), signupInput("Student@ArielSpace.com"))
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Email != "student@arielspace.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}

	admin, err := svc.Signup(context.Background(), signupInput("ADMIN@arielspace.com"))
	if err != nil {
		t.Fatalf("Signup admin returned error: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected allow-listed email to get admin role, got %s", admin.Role)
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	if _, err := svc.Signup(context.Background(), signupInput("a@b.co")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(context.Background(), signupInput("A@B.CO"))
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one stored user, got %d", repo.creates)
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	cases := map[string]ports.SignupInput{
		"missing names": {Email: "a@b.co", Password: "pass123"},
		"bad email":     {Email: "not-an-email", Password: "pass123", FirstName: "A", LastName: "B"},
		"no tld":        {Email: "a@b", Password: "pass123", FirstName: "A", LastName: "B"},
		"short pass":    {Email: "a@b.co", Password: "12345", FirstName: "A", LastName: "B"},
	}
	for name, in := range cases {
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if repo.creates != 0 {
		t.Fatalf("expected no users stored, got %d", repo.creates)
	}
}

func TestAuthService_Login_CaseInsensitiveEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, store := newTestAuthService(repo, AuthConfig{TokenTTL: time.Hour})

	if _, err := svc.Signup(context.Background(), signupInput("student@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.Login(context.Background(), "  STUDENT@ArielSpace.com ", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" || res.SessionID == "" {
		t.Fatalf("expected token and session id, got %+v", res)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one server-side session, got %d", store.Len())
	}

	parsed, err := jwt.Parse(res.Token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sid"] != res.SessionID {
		t.Fatalf("expected sid claim %q, got %v", res.SessionID, claims["sid"])
	}
	if claims["role"] != domain.RoleUser || claims["email"] != "student@arielspace.com" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	if _, err := svc.Signup(context.Background(), signupInput("student@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, errWrong := svc.Login(context.Background(), "student@arielspace.com", "wrong-pass")
	_, errUnknown := svc.Login(context.Background(), "nobody@arielspace.com", "pass123")
	if !errors.Is(errWrong, domain.ErrInvalidCredentials) || !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("unknown email and wrong password must look the same")
	}

	if _, err := svc.Login(context.Background(), "", "pass123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailStillComparesHash(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	if _, err := svc.Signup(context.Background(), signupInput("student@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	if _, err := svc.Login(context.Background(), "nobody@arielspace.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "student@arielspace.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("expected one bcrypt comparison per failed login, got %d", len(hashes))
	}
	if _, err := bcrypt.Cost(hashes[0]); err != nil {
		t.Fatalf("unknown email must be compared against a real bcrypt hash: %v", err)
	}
}

func TestAuthService_Login_StorageErrorSurfaces(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newTestAuthService(repo, AuthConfig{})

	_, err := svc.Login(context.Background(), "a@b.co", "pass123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected storage error to surface, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestAuthService_Login_Override(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{
		OverrideEmail:    "Root@ArielSpace.com",
		OverridePassword: "break-glass",
	})

	// The stored hash is for a different password.
	if _, err := svc.Signup(context.Background(), signupInput("root@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.Login(context.Background(), "root@arielspace.com", "break-glass")
	if err != nil {
		t.Fatalf("override login failed: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected override to force admin role, got %s", res.User.Role)
	}

	if _, err := svc.Login(context.Background(), "root@arielspace.com", "pass123"); err != nil {
		t.Fatalf("regular password must still work: %v", err)
	}

	if _, err := svc.Signup(context.Background(), signupInput("other@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(context.Background(), "other@arielspace.com", "break-glass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("override must only apply to its own address, got %v", err)
	}
}

func TestAuthService_Login_OverrideDisabledWithoutPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{OverrideEmail: "root@arielspace.com"})

	if _, err := svc.Signup(context.Background(), signupInput("root@arielspace.com")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(context.Background(), "root@arielspace.com", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "root@arielspace.com", "anything"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LogoutEndsSession(t *testing.T) {
	repo := newStubUserRepo()
	svc, store := newTestAuthService(repo, AuthConfig{})

	if _, err := svc.Signup(context.Background(), signupInput("a@b.co")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	res, err := svc.Login(context.Background(), "a@b.co", "pass123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), res.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session removed, %d left", store.Len())
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo, AuthConfig{})

	created, err := svc.Signup(context.Background(), signupInput("a@b.co"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	got, err := svc.Me(context.Background(), created.ID)
	if err != nil || got.Email != "a@b.co" {
		t.Fatalf("unexpected Me result: %+v, %v", got, err)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
