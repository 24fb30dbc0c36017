package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		present bool
		finite  bool
		want    float64
	}{
		{"", false, false, 0},
		{"   ", false, false, 0},
		{"0", true, true, 0},
		{"-12.5", true, true, -12.5},
		{" 7 ", true, true, 7},
		{"abc", true, false, 0},
		{"Inf", true, false, 0},
	}

	for _, tt := range tests {
		v := domain.ParseValue(tt.in)
		assert.Equal(t, tt.present, v.Present(), "present for %q", tt.in)
		assert.Equal(t, tt.finite, v.Finite(), "finite for %q", tt.in)
		if tt.finite {
			got, _ := v.Float()
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestInputSet_WithDoesNotMutate(t *testing.T) {
	base := domain.DefaultSettings().Defaults()
	changed := base.With(domain.FieldSumI, domain.Number(12))

	assert.True(t, base.SumI.Equal(domain.Number(0)))
	assert.True(t, changed.SumI.Equal(domain.Number(12)))
}

func TestInputSet_MapRoundTrip(t *testing.T) {
	in := domain.InputSet{
		SumI:   domain.Number(5),
		SumIII: domain.Number(-5),
		R1:     domain.Number(7.25),
		QS1:    domain.Missing(),
		R3:     domain.Number(math.NaN()),
		QS3:    domain.Number(math.Inf(-1)),
	}

	m := in.ToMap()
	assert.Nil(t, m["qs1"])
	assert.Equal(t, "NaN", m["r3"])
	assert.Equal(t, "-Inf", m["qs3"])

	out, err := domain.InputSetFromMap(m)
	require.NoError(t, err)
	assert.True(t, in.Equal(out), "got %+v", out.ToMap())
}

func TestInputSet_JSONRoundTrip(t *testing.T) {
	in := domain.InputSet{
		SumI:   domain.Number(0.1),
		SumIII: domain.Number(-30),
		R1:     domain.Number(12),
		QS1:    domain.Number(3),
		R3:     domain.Number(9),
		QS3:    domain.Missing(),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sumI":0.1,"sumIII":-30,"r1":12,"qs1":3,"r3":9,"qs3":null}`, string(data))

	var out domain.InputSet
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Equal(out))
}

func TestInputSetFromMap_Errors(t *testing.T) {
	_, err := domain.InputSetFromMap(map[string]any{"sumI": 1, "sumII": 2})
	assert.Error(t, err, "unknown keys must be rejected")

	_, err = domain.InputSetFromMap(map[string]any{"sumI": []int{1}})
	assert.Error(t, err)

	in, err := domain.InputSetFromMap(map[string]any{"sumI": "4.5", "r1": int64(3)})
	require.NoError(t, err)
	assert.True(t, in.SumI.Equal(domain.Number(4.5)))
	assert.True(t, in.R1.Equal(domain.Number(3)))
	assert.False(t, in.SumIII.Present())
}

func TestParseField(t *testing.T) {
	f, err := domain.ParseField("qs3")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldQS3, f)

	_, err = domain.ParseField("qs2")
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestMode_Fields(t *testing.T) {
	assert.Equal(t, domain.ModeSums, domain.ModeOf(true))
	assert.Equal(t, domain.ModeWaves, domain.ModeOf(false))
	assert.True(t, domain.ModeSums.Owns(domain.FieldSumIII))
	assert.False(t, domain.ModeSums.Owns(domain.FieldR1))
	assert.Len(t, domain.ModeWaves.Fields(), 4)
}
