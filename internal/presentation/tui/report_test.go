package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/form"
	"github.com/aretw0/heartaxis/pkg/validation"
)

func evaluate(mode domain.Mode, in domain.InputSet) domain.Outcome {
	return form.Evaluate(validation.NewEngine(domain.DefaultSettings()), form.DefaultDisplay(), mode, in)
}

func TestReport(t *testing.T) {
	in := domain.DefaultSettings().Defaults().
		With(domain.FieldSumI, domain.Number(3)).
		With(domain.FieldSumIII, domain.Missing())
	md := Report(domain.ModeSums, in, evaluate(domain.ModeSums, in))

	assert.Contains(t, md, "## Heart axis (sums)")
	assert.Contains(t, md, "| Sum of lead I (`sumI`) | 3 | ok |")
	assert.Contains(t, md, "| Sum of lead III (`sumIII`) | - | not a number, value is required |")
	assert.Contains(t, md, "**Axis:** ERROR")
	assert.NotContains(t, md, "r1")

	in = in.With(domain.FieldSumIII, domain.Number(3))
	md = Report(domain.ModeSums, in, evaluate(domain.ModeSums, in))
	assert.Contains(t, md, "**Axis:** 60.0° (normal deviation, magnitude 6.00)")
}

func TestReport_FormRule(t *testing.T) {
	in := domain.DefaultSettings().Defaults()
	md := Report(domain.ModeWaves, in, evaluate(domain.ModeWaves, in))
	assert.Contains(t, md, "> every R minus QS difference is zero")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	in := domain.DefaultSettings().Defaults()
	PrintOutcome(&buf, evaluate(domain.ModeSums, in))
	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), "allValueIsZero")

	buf.Reset()
	in = in.With(domain.FieldSumI, domain.Number(1))
	PrintOutcome(&buf, evaluate(domain.ModeSums, in))
	assert.Contains(t, buf.String(), "30.0°")
	assert.Contains(t, buf.String(), "normal")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestNewRenderer_Plain(t *testing.T) {
	render := NewRenderer(false)
	out, err := render("**Axis:** 60.0°")
	assert.NoError(t, err)
	assert.Contains(t, out, "60.0°")
}
