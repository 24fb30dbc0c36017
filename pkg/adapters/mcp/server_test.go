package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestHandleCalculate(t *testing.T) {
	s := NewServer(heartaxis.New())
	ctx := context.Background()

	resp, err := s.handleCalculate(ctx, mcp.CallToolRequest{}, InputArgs{UseSums: true, SumI: ptr(3), SumIII: ptr(3)})
	require.NoError(t, err)
	require.NotNil(t, resp.Angle)
	assert.InDelta(t, 60.0, *resp.Angle, 1e-9)
	assert.Equal(t, "sums", resp.Mode)
	assert.Equal(t, "normal", resp.Deviation)
	assert.Equal(t, "60.0°", resp.Display)
	assert.False(t, resp.FormInvalid)

	// Waves with r1 omitted: required + invalidNumber, no angle.
	resp, err = s.handleCalculate(ctx, mcp.CallToolRequest{}, InputArgs{QS1: ptr(0), R3: ptr(4), QS3: ptr(1)})
	require.NoError(t, err)
	assert.Nil(t, resp.Angle)
	assert.True(t, resp.FormInvalid)
	assert.Equal(t, "ERROR", resp.Display)
	assert.Equal(t, []string{"invalidNumber", "required"}, resp.Fields["r1"])
}

func TestHandleValidate(t *testing.T) {
	s := NewServer(heartaxis.New())

	resp, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, InputArgs{UseSums: true, SumI: ptr(0), SumIII: ptr(0)})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"allValueIsZero"}, resp.Form)
	assert.Empty(t, resp.Fields)

	resp, err = s.handleValidate(context.Background(), mcp.CallToolRequest{}, InputArgs{UseSums: true, SumI: ptr(-60), SumIII: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"invalidMinimum"}, resp.Fields["sumI"])
}

func TestInputArgs_Binding(t *testing.T) {
	var args InputArgs
	require.NoError(t, json.Unmarshal([]byte(`{"use_sums":false,"r1":5,"qs1":null}`), &args))

	in := args.Inputs()
	assert.True(t, in.R1.Equal(domain.Number(5)))
	assert.False(t, in.QS1.Present())
	assert.False(t, in.SumI.Present())
}

func TestReadSettings(t *testing.T) {
	s := NewServer(heartaxis.New())

	contents, err := s.readSettings(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SettingsURI, text.URI)

	var got domain.Settings
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, domain.DefaultSettings(), got)
}
