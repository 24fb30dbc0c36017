/*
Package heartaxis computes the electrical axis of the heart from two
electrocardiogram limb leads.

The axis is derived from the net deflection of lead I and lead III, either
entered directly as sums ("sums" mode) or as the R and QS wave amplitudes of
each lead ("waves" mode, where each sum is R minus QS). Every reading is
validated before the angle is computed: a failing rule never produces a
wrong angle, only a set of rule flags and the error marker.

# Architecture

The core is pure and synchronous:

  - pkg/domain holds the values, settings, flags and outcomes.
  - pkg/validation composes per-field and cross-field validators.
  - pkg/axis holds the trigonometry.
  - pkg/form ties them into the calculator form of one session.

The Service in this package adds sessions on top of the core. Sessions are
persisted through a ports.SessionStore (memory, file or Redis), serialized
by a session.Manager and optionally published to a ports.OutcomePublisher.

# Usage

	svc := heartaxis.New()

	// Stateless
	in := domain.DefaultSettings().Defaults().
		With(domain.FieldSumI, domain.Number(3)).
		With(domain.FieldSumIII, domain.Number(3))
	fmt.Println(svc.Calculate(true, in).Display) // 60.0°

	// Stateful
	ctx := context.Background()
	res, _ := svc.Start(ctx, "patient-42", true)
	res, _ = svc.Edit(ctx, res.Session.ID, domain.FieldSumI, domain.Number(5))
*/
package heartaxis
