package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
)

// SessionService is the server-side half of the idle timeout. Each
// authenticated request counts as activity for its session.
type SessionService struct {
	store  session.Store
	policy session.Policy
	now    func() time.Time
	log    zerolog.Logger
}

func NewSessionService(store session.Store, policy session.Policy, log zerolog.Logger) *SessionService {
	if policy.Validate() != nil {
		policy = session.DefaultPolicy
	}
	return &SessionService{
		store:  store,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Policy returns the idle policy in force.
func (s *SessionService) Policy() session.Policy {
	return s.policy
}

func (s *SessionService) Start(ctx context.Context, user session.User) (string, error) {
	id := uuid.NewString()
	rec := &session.Record{User: user, LastActivity: s.now()}
	if err := s.store.Save(ctx, id, rec); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	s.log.Debug().Str("session_id", id).Str("email", user.Email).Msg("session started")
	return id, nil
}

// Touch refreshes last activity after checking the idle timeout.
func (s *SessionService) Touch(ctx context.Context, sessionID string) (*ports.SessionStatus, error) {
	rec, err := s.live(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rec.LastActivity = s.now()
	if err := s.store.Save(ctx, sessionID, rec); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return s.status(sessionID, rec, rec.LastActivity), nil
}

// Peek reports the session status without counting as activity.
func (s *SessionService) Peek(ctx context.Context, sessionID string) (*ports.SessionStatus, error) {
	rec, err := s.live(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.status(sessionID, rec, s.now()), nil
}

func (s *SessionService) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.log.Debug().Str("session_id", sessionID).Msg("session ended")
	return nil
}

// live loads a record and deletes it when it has idled past the timeout.
func (s *SessionService) live(ctx context.Context, sessionID string) (*session.Record, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if s.policy.Expired(rec.LastActivity, s.now()) {
		if err := s.store.Delete(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete expired session")
		}
		s.log.Info().Str("session_id", sessionID).Str("email", rec.User.Email).Msg("session expired after inactivity")
		return nil, domain.ErrSessionExpired
	}
	return rec, nil
}

func (s *SessionService) status(id string, rec *session.Record, now time.Time) *ports.SessionStatus {
	state := session.Active.String()
	if s.policy.InWarning(rec.LastActivity, now) {
		state = session.Warning.String()
	}
	return &ports.SessionStatus{
		SessionID:        id,
		User:             rec.User,
		State:            state,
		LastActivity:     rec.LastActivity,
		ExpiresAt:        s.policy.ExpiresAt(rec.LastActivity),
		RemainingSeconds: int(s.policy.Remaining(rec.LastActivity, now).Seconds()),
	}
}
