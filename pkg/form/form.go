package form

import (
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/validation"
)

// Hooks lets observers follow the form without coupling it to them.
type Hooks struct {
	// OnRecompute is called after every recompute with the new outcome.
	OnRecompute func(domain.Outcome)
}

// Option configures a Form.
type Option func(*Form)

// WithDisplay sets how angles and errors are rendered.
func WithDisplay(d Display) Option {
	return func(f *Form) {
		f.display = d
	}
}

// WithHooks registers observers.
func WithHooks(h Hooks) Option {
	return func(f *Form) {
		f.hooks = h
	}
}

// WithEngine shares a prebuilt validation engine (it must match the settings).
func WithEngine(e *validation.Engine) Option {
	return func(f *Form) {
		f.engine = e
	}
}

// Form is the calculator form of one session.
type Form struct {
	settings domain.Settings
	engine   *validation.Engine
	display  Display
	hooks    Hooks

	useSums bool
	inputs  domain.InputSet
	outcome domain.Outcome
}

// New creates a form with every field at its configured default.
func New(settings domain.Settings, useSums bool, opts ...Option) *Form {
	f := &Form{
		settings: settings,
		display:  DefaultDisplay(),
		useSums:  useSums,
		inputs:   settings.Defaults(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.engine == nil {
		f.engine = validation.NewEngine(settings)
	}
	f.recompute()
	return f
}

// Restore replaces every field with previously persisted values. Fields of
// the inactive mode go back to their defaults.
func (f *Form) Restore(in domain.InputSet) domain.Outcome {
	f.inputs = in
	f.resetGroup(!f.useSums)
	return f.recompute()
}

// Set mutates one field and recomputes.
func (f *Form) Set(field domain.Field, v domain.Value) (domain.Outcome, error) {
	if _, err := domain.ParseField(string(field)); err != nil {
		return f.outcome, err
	}
	f.inputs = f.inputs.With(field, v)
	return f.recompute(), nil
}

// SetMode switches between sums and waves. The fields of the mode being
// left are reset to their defaults.
func (f *Form) SetMode(useSums bool) domain.Outcome {
	if useSums != f.useSums {
		f.useSums = useSums
		f.resetGroup(!useSums)
	}
	return f.recompute()
}

// Reset puts both groups back to their defaults.
func (f *Form) Reset() domain.Outcome {
	f.inputs = f.settings.Defaults()
	return f.recompute()
}

// Outcome returns the result of the last recompute.
func (f *Form) Outcome() domain.Outcome {
	return f.outcome
}

// Snapshot returns a copy of the current values.
func (f *Form) Snapshot() domain.InputSet {
	return f.inputs
}

// UseSums reports the active mode flag.
func (f *Form) UseSums() bool {
	return f.useSums
}

// Mode returns the active mode.
func (f *Form) Mode() domain.Mode {
	return domain.ModeOf(f.useSums)
}

// resetGroup resets the sums group (sums=true) or the waves group.
func (f *Form) resetGroup(sums bool) {
	for _, field := range domain.ModeOf(sums).Fields() {
		f.inputs = f.inputs.With(field, f.settings.Default(field))
	}
}

func (f *Form) recompute() domain.Outcome {
	f.outcome = Evaluate(f.engine, f.display, f.Mode(), f.inputs)
	if f.hooks.OnRecompute != nil {
		f.hooks.OnRecompute(f.outcome)
	}
	return f.outcome
}
