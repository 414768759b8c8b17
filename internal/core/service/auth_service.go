package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthConfig configures token issuance and role assignment.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Admins    domain.AdminList
	// OverrideEmail and OverridePassword form the optional break-glass admin
	// credential. Both must be set for it to apply.
	OverrideEmail    string
	OverridePassword string
	BcryptCost       int
}

// AuthService implements signup, login and token issuance.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionService
	cfg      AuthConfig
	now      func() time.Time
	log      zerolog.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
	compare   func(hash, password []byte) error
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionService, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	cfg.OverrideEmail = domain.NormalizeEmail(cfg.OverrideEmail)

	dummy, err := bcrypt.GenerateFromPassword([]byte("listing-board-unknown-user"), cfg.BcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("auth: generate dummy hash")
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
		dummyHash: dummy,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)

	switch {
	case email == "" || in.Password == "" || first == "" || last == "":
		return nil, domain.NewValidationError("email, password, first name and last name are required")
	case !emailPattern.MatchString(email):
		return nil, domain.NewValidationError("invalid email format")
	case len(in.Password) < minPasswordLen:
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	var phone *string
	if in.Phone != nil {
		if p := strings.TrimSpace(*in.Phone); p != "" {
			phone = &p
		}
	}

	now := s.now()
	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Phone:        phone,
		Role:         s.cfg.Admins.RoleFor(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", email).Str("role", user.Role).Msg("user signed up")
	return user, nil
}

// Login verifies credentials, opens a server-side session and issues a
// token bound to it. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.compare(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	switch {
	case s.overrideMatches(email, password):
		user.Role = domain.RoleAdmin
		s.log.Warn().Str("email", email).Msg("admin override credential used")
	case s.compare([]byte(user.PasswordHash), []byte(password)) != nil:
		return nil, domain.ErrInvalidCredentials
	}

	sid, err := s.sessions.Start(ctx, session.User{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name(),
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL)
	token, err := s.generateToken(user, sid, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("session_id", sid).Msg("user logged in")
	return &ports.LoginResult{User: user, Token: token, SessionID: sid, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) overrideMatches(email, password string) bool {
	if s.cfg.OverrideEmail == "" || s.cfg.OverridePassword == "" {
		return false
	}
	if email != s.cfg.OverrideEmail {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.OverridePassword)) == 1
}

func (s *AuthService) generateToken(user *domain.User, sid string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"sid":   sid,
		"iat":   s.now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}
