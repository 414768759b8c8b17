package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arielspace/listing-board/internal/core/domain"
)

// State is the lifecycle phase of the client-held session.
type State int

const (
	LoggedOut State = iota
	Active
	Warning
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Warning:
		return "warning"
	default:
		return "logged_out"
	}
}

// Event is a user-interaction signal. Only tracked events count as activity.
type Event string

const (
	EventPointerDown Event = "pointerdown"
	EventKeyDown     Event = "keydown"
	EventScroll      Event = "scroll"
	EventTouchStart  Event = "touchstart"
	EventClick       Event = "click"
)

// Tracked reports whether e resets the idle timer.
func (e Event) Tracked() bool {
	switch e {
	case EventPointerDown, EventKeyDown, EventScroll, EventTouchStart, EventClick:
		return true
	}
	return false
}

const (
	DefaultKey             = "current"
	DefaultWelcomeDuration = 5 * time.Second
)

// Hooks are called outside the manager lock.
type Hooks struct {
	// Warning fires once when the session enters the warning window.
	Warning func(countdown time.Duration)
	// Expired fires when the idle timeout ends the session.
	Expired func()
}

type Config struct {
	Policy          Policy
	Admins          domain.AdminList
	WelcomeDuration time.Duration
	// Key is the storage key of the single client session.
	Key string
}

type Option func(*Manager)

func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithHooks(h Hooks) Option {
	return func(m *Manager) { m.hooks = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager owns the session belief of one client: who is logged in, when
// they were last active and which timers are pending. Every transition
// bumps a generation counter so a timer scheduled for an earlier
// generation is a no-op when it fires.
type Manager struct {
	store   Store
	policy  Policy
	admins  domain.AdminList
	welcome time.Duration
	key     string
	clock   Clock
	hooks   Hooks
	log     zerolog.Logger

	mu           sync.Mutex
	state        State
	user         User
	token        string
	lastActivity time.Time
	gen          uint64
	warnTimer    Timer
	expireTimer  Timer

	showWelcome  bool
	welcomeGen   uint64
	welcomeTimer Timer
}

func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	if cfg.Policy.Validate() != nil {
		cfg.Policy = DefaultPolicy
	}
	if cfg.WelcomeDuration <= 0 {
		cfg.WelcomeDuration = DefaultWelcomeDuration
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	m := &Manager{
		store:   store,
		policy:  cfg.Policy,
		admins:  cfg.Admins,
		welcome: cfg.WelcomeDuration,
		key:     cfg.Key,
		clock:   SystemClock(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type loginOptions struct {
	name  string
	role  string
	id    string
	token string
}

type LoginOption func(*loginOptions)

// WithName overrides the display name derived from the email local part.
func WithName(name string) LoginOption {
	return func(o *loginOptions) { o.name = name }
}

// WithRole overrides the role derived from the admin list, e.g. with the
// role the server put in the token.
func WithRole(role string) LoginOption {
	return func(o *loginOptions) { o.role = role }
}

// WithUserID keeps the server-issued user id instead of a generated one.
func WithUserID(id string) LoginOption {
	return func(o *loginOptions) { o.id = id }
}

// WithToken attaches the bearer token returned by the API.
func WithToken(token string) LoginOption {
	return func(o *loginOptions) { o.token = token }
}

// Login starts a session for email. It reports false when the record
// cannot be persisted, in which case the manager stays LoggedOut.
func (m *Manager) Login(ctx context.Context, email string, opts ...LoginOption) (User, bool) {
	email = domain.NormalizeEmail(email)
	o := loginOptions{
		name: localPart(email),
		role: m.admins.RoleFor(email),
		id:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()

	now := m.clock.Now()
	rec := Record{
		User:         User{ID: o.id, Email: email, Name: o.name, Role: o.role},
		Token:        o.token,
		LastActivity: now,
	}
	if err := m.store.Save(ctx, m.key, &rec); err != nil {
		m.log.Error().Err(err).Str("email", email).Msg("session: persist login failed")
		return User{}, false
	}

	m.user = rec.User
	m.token = rec.Token
	m.lastActivity = now
	m.state = Active
	m.scheduleLocked(now)

	m.showWelcome = true
	m.welcomeGen++
	wgen := m.welcomeGen
	m.welcomeTimer = m.clock.AfterFunc(m.welcome, func() { m.onWelcomeElapsed(wgen) })

	m.log.Info().Str("email", email).Str("role", o.role).Msg("session started")
	return m.user, true
}

// Activity records a user interaction. Untracked events and events while
// LoggedOut are ignored. It reports whether the idle timer was reset.
func (m *Manager) Activity(ctx context.Context, ev Event) bool {
	if !ev.Tracked() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == LoggedOut {
		return false
	}
	return m.touchLocked(ctx)
}

// Extend is the explicit "stay logged in" action. It only applies during
// the warning window.
func (m *Manager) Extend(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Warning {
		return false
	}
	return m.touchLocked(ctx)
}

// Logout ends the session, cancels timers and removes the stored record.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != LoggedOut {
		m.log.Info().Str("email", m.user.Email).Msg("session ended")
	}
	m.resetLocked()
	if err := m.store.Delete(ctx, m.key); err != nil {
		m.log.Warn().Err(err).Msg("session: delete record failed")
	}
}

// Restore loads a persisted record at startup. An expired record is
// deleted. A live one resumes with its remaining idle budget, entering
// Warning immediately when the warning point has already passed.
func (m *Manager) Restore(ctx context.Context) State {
	rec, err := m.store.Load(ctx, m.key)

	m.mu.Lock()
	m.resetLocked()

	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			m.log.Warn().Err(err).Msg("session: load record failed")
		}
		m.mu.Unlock()
		return LoggedOut
	}

	now := m.clock.Now()
	if m.policy.Expired(rec.LastActivity, now) {
		if err := m.store.Delete(ctx, m.key); err != nil {
			m.log.Warn().Err(err).Msg("session: delete expired record failed")
		}
		m.mu.Unlock()
		return LoggedOut
	}

	m.user = rec.User
	m.token = rec.Token
	m.lastActivity = rec.LastActivity
	m.state = Active
	warnNow := m.scheduleLocked(now)

	var (
		hook      = m.hooks.Warning
		countdown time.Duration
	)
	if warnNow {
		m.state = Warning
		countdown = m.policy.Remaining(m.lastActivity, now)
	}
	m.mu.Unlock()

	if warnNow && hook != nil {
		hook(countdown)
	}
	return m.State()
}

// Stop cancels pending timers without touching the stored record.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.stopTimersLocked()
	m.welcomeGen++
	if m.welcomeTimer != nil {
		m.welcomeTimer.Stop()
		m.welcomeTimer = nil
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the current user and whether a session exists.
func (m *Manager) User() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.state != LoggedOut
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// LastActivity is the zero time when LoggedOut.
func (m *Manager) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// ExpiresAt is the zero time when LoggedOut.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == LoggedOut {
		return time.Time{}
	}
	return m.policy.ExpiresAt(m.lastActivity)
}

// Countdown is the time left before auto-logout while in Warning, zero
// otherwise.
func (m *Manager) Countdown() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Warning {
		return 0
	}
	return m.policy.Remaining(m.lastActivity, m.clock.Now())
}

// Welcome reports whether the post-login welcome message is still shown.
func (m *Manager) Welcome() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showWelcome
}

func (m *Manager) DismissWelcome() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.showWelcome = false
	m.welcomeGen++
	if m.welcomeTimer != nil {
		m.welcomeTimer.Stop()
		m.welcomeTimer = nil
	}
}

// touchLocked persists the new activity time and reschedules. A failed
// write drops the session.
func (m *Manager) touchLocked(ctx context.Context) bool {
	now := m.clock.Now()
	rec := Record{User: m.user, Token: m.token, LastActivity: now}
	if err := m.store.Save(ctx, m.key, &rec); err != nil {
		m.log.Error().Err(err).Str("email", m.user.Email).Msg("session: persist activity failed, logging out")
		m.resetLocked()
		return false
	}

	m.lastActivity = now
	m.state = Active
	m.scheduleLocked(now)
	return true
}

// scheduleLocked arms the warning and expiry timers relative to
// lastActivity. It returns true when the warning point is already behind
// now, in which case no warning timer is armed.
func (m *Manager) scheduleLocked(now time.Time) bool {
	m.stopTimersLocked()
	m.gen++
	gen := m.gen

	warnNow := false
	if d := m.policy.WarningAt(m.lastActivity).Sub(now); d > 0 {
		m.warnTimer = m.clock.AfterFunc(d, func() { m.onWarning(gen) })
	} else {
		warnNow = true
	}
	m.expireTimer = m.clock.AfterFunc(m.policy.Remaining(m.lastActivity, now), func() { m.onExpire(gen) })
	return warnNow
}

func (m *Manager) onWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != Active {
		m.mu.Unlock()
		return
	}
	m.state = Warning
	countdown := m.policy.Remaining(m.lastActivity, m.clock.Now())
	hook := m.hooks.Warning
	m.mu.Unlock()

	m.log.Debug().Dur("countdown", countdown).Msg("session idle warning")
	if hook != nil {
		hook(countdown)
	}
}

func (m *Manager) onExpire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state == LoggedOut {
		m.mu.Unlock()
		return
	}
	email := m.user.Email
	m.resetLocked()
	if err := m.store.Delete(context.Background(), m.key); err != nil {
		m.log.Warn().Err(err).Msg("session: delete expired record failed")
	}
	hook := m.hooks.Expired
	m.mu.Unlock()

	m.log.Info().Str("email", email).Msg("session expired after inactivity")
	if hook != nil {
		hook()
	}
}

func (m *Manager) onWelcomeElapsed(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.welcomeGen {
		return
	}
	m.showWelcome = false
	m.welcomeTimer = nil
}

func (m *Manager) stopTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.expireTimer != nil {
		m.expireTimer.Stop()
		m.expireTimer = nil
	}
}

func (m *Manager) resetLocked() {
	m.gen++
	m.stopTimersLocked()
	m.state = LoggedOut
	m.user = User{}
	m.token = ""
	m.lastActivity = time.Time{}

	m.showWelcome = false
	m.welcomeGen++
	if m.welcomeTimer != nil {
		m.welcomeTimer.Stop()
		m.welcomeTimer = nil
	}
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
