package heartaxis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/heartaxis/internal/logging"
	"github.com/aretw0/heartaxis/pkg/adapters/memory"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/form"
	"github.com/aretw0/heartaxis/pkg/ports"
	"github.com/aretw0/heartaxis/pkg/session"
	"github.com/aretw0/heartaxis/pkg/validation"
	"github.com/google/uuid"
)

// Hooks lets hosts observe the service (metrics, audit logs).
type Hooks struct {
	// OnOutcome runs after every computed outcome. The session ID is empty
	// for stateless calculations.
	OnOutcome func(sessionID string, outcome domain.Outcome)

	// OnSessionEnd runs after a session has been finalized.
	OnSessionEnd func(sessionID string)
}

// Result is the state of a session after an operation.
type Result struct {
	Session  *domain.Session `json:"session"`
	Outcome  domain.Outcome  `json:"outcome"`
	Restored bool            `json:"restored,omitempty"`
}

// Service is the high-level entry point for hosts (CLI, HTTP, MCP).
type Service struct {
	settings   domain.Settings
	display    form.Display
	engine     *validation.Engine
	store      ports.SessionStore
	locker     ports.DistributedLocker
	publishers []ports.OutcomePublisher
	hooks      Hooks
	logger     *slog.Logger
	manager    *session.Manager
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithSettings replaces the default bounds. They must pass Settings.Validate.
func WithSettings(settings domain.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithDisplay sets how outcomes are rendered.
func WithDisplay(d form.Display) Option {
	return func(s *Service) {
		s.display = d
	}
}

// WithStore sets where sessions are kept (default: in memory).
func WithStore(store ports.SessionStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLocker enables distributed locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithPublisher forwards every session outcome to p. It may be repeated.
func WithPublisher(p ports.OutcomePublisher) Option {
	return func(s *Service) {
		s.publishers = append(s.publishers, p)
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service. Without options it uses the default settings and
// an in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		settings: domain.DefaultSettings(),
		display:  form.DefaultDisplay(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	s.engine = validation.NewEngine(s.settings)

	mgrOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(s.locker))
	}
	s.manager = session.NewManager(s.store, mgrOpts...)
	return s
}

// Settings returns the bounds in use.
func (s *Service) Settings() domain.Settings {
	return s.settings
}

// Display returns the rendering configuration in use.
func (s *Service) Display() form.Display {
	return s.display
}

// Calculate validates a snapshot and computes its axis without touching
// any session.
func (s *Service) Calculate(useSums bool, in domain.InputSet) domain.Outcome {
	out := form.Evaluate(s.engine, s.display, domain.ModeOf(useSums), in)
	if s.hooks.OnOutcome != nil {
		s.hooks.OnOutcome("", out)
	}
	return out
}

// Validate reports every rule the snapshot violates in the given mode.
func (s *Service) Validate(useSums bool, in domain.InputSet) domain.ValidationResult {
	return s.engine.Evaluate(domain.ModeOf(useSums), in)
}

// Start restores the session with the given ID, or creates it. Either way
// the session runs in the requested mode; on restore the group that mode
// does not use goes back to its defaults. An empty ID generates a new one.
func (s *Service) Start(ctx context.Context, sessionID string, useSums bool) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess, restored, err := s.manager.LoadOrStart(ctx, sessionID, useSums, s.settings)
	if err != nil {
		return nil, err
	}

	res := &Result{Restored: restored}
	if restored {
		// Restoring resets the inactive group, so the normalized record is saved back.
		sess, err = s.manager.Update(ctx, sessionID, func(sess *domain.Session) error {
			sess.UseSums = useSums
			f := s.formOf(sess)
			res.Outcome = f.Outcome()
			sess.Inputs = f.Snapshot()
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		res.Outcome = s.formOf(sess).Outcome()
	}
	res.Session = sess

	s.logger.Debug("session started", "session_id", sessionID, "restored", restored, "mode", sess.Mode())
	s.emit(ctx, sessionID, res.Outcome)
	return res, nil
}

// Edit sets one field of a session and recomputes.
func (s *Service) Edit(ctx context.Context, sessionID string, field domain.Field, v domain.Value) (*Result, error) {
	return s.mutate(ctx, sessionID, func(f *form.Form) (domain.Outcome, error) {
		return f.Set(field, v)
	})
}

// SwitchMode toggles between sums and waves. The group being left goes back
// to its defaults.
func (s *Service) SwitchMode(ctx context.Context, sessionID string, useSums bool) (*Result, error) {
	return s.mutate(ctx, sessionID, func(f *form.Form) (domain.Outcome, error) {
		return f.SetMode(useSums), nil
	})
}

// Reset puts every field of a session back to its default.
func (s *Service) Reset(ctx context.Context, sessionID string) (*Result, error) {
	return s.mutate(ctx, sessionID, func(f *form.Form) (domain.Outcome, error) {
		return f.Reset(), nil
	})
}

// Inspect returns the current state of a session without modifying it.
func (s *Service) Inspect(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := s.manager.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Result{Session: sess, Outcome: s.formOf(sess).Outcome()}, nil
}

// End performs the final save of a session. The record stays in the store
// so the next Start restores it.
func (s *Service) End(ctx context.Context, sessionID string) (*Result, error) {
	res, err := s.mutate(ctx, sessionID, func(f *form.Form) (domain.Outcome, error) {
		return f.Outcome(), nil
	})
	if err != nil {
		return nil, err
	}
	if s.hooks.OnSessionEnd != nil {
		s.hooks.OnSessionEnd(sessionID)
	}
	return res, nil
}

// Remove deletes a session from the store.
func (s *Service) Remove(ctx context.Context, sessionID string) error {
	if err := s.manager.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", sessionID, err)
	}
	s.logger.Debug("session removed", "session_id", sessionID)
	return nil
}

// Sessions lists the IDs of stored sessions.
func (s *Service) Sessions(ctx context.Context) ([]string, error) {
	return s.manager.List(ctx)
}

// Manager exposes the session manager for hosts that need raw locking.
func (s *Service) Manager() *session.Manager {
	return s.manager
}

// mutate runs op on the form of a session under its lock, persists the
// resulting values and then notifies observers.
func (s *Service) mutate(ctx context.Context, sessionID string, op func(*form.Form) (domain.Outcome, error)) (*Result, error) {
	var out domain.Outcome
	sess, err := s.manager.Update(ctx, sessionID, func(sess *domain.Session) error {
		f := s.formOf(sess)
		o, err := op(f)
		if err != nil {
			return err
		}
		out = o
		sess.UseSums = f.UseSums()
		sess.Inputs = f.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, sessionID, out)
	return &Result{Session: sess, Outcome: out}, nil
}

// formOf rebuilds the form of a persisted session.
func (s *Service) formOf(sess *domain.Session) *form.Form {
	f := form.New(s.settings, sess.UseSums,
		form.WithDisplay(s.display),
		form.WithEngine(s.engine),
	)
	f.Restore(sess.Inputs)
	return f
}

// emit runs hooks and publishes. Publishing is best effort.
func (s *Service) emit(ctx context.Context, sessionID string, out domain.Outcome) {
	if s.hooks.OnOutcome != nil {
		s.hooks.OnOutcome(sessionID, out)
	}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, sessionID, out); err != nil {
			s.logger.Warn("failed to publish outcome", "session_id", sessionID, "err", err)
		}
	}
}
