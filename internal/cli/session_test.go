package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/pkg/adapters/memory"
	"github.com/aretw0/heartaxis/pkg/domain"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, cmd, arg string
	}{
		{"sumI 3", "sumI", "3"},
		{"  r1=4.5 ", "r1", "4.5"},
		{"qs1", "qs1", ""},
		{"mode   waves", "mode", "waves"},
		{"", "", ""},
	}
	for _, tt := range tests {
		cmd, arg := splitCommand(tt.line)
		assert.Equal(t, tt.cmd, cmd, tt.line)
		assert.Equal(t, tt.arg, arg, tt.line)
	}
}

func TestRunSession_EditAndRestore(t *testing.T) {
	store := memory.NewStore()
	svc := heartaxis.New(heartaxis.WithStore(store))
	ctx := context.Background()

	var out bytes.Buffer
	err := RunSession(ctx, svc, RunOptions{
		SessionID: "cli",
		UseSums:   true,
		In:        strings.NewReader("help\nsumI 3\nsumIII=3\nbogus 1\nmode diagonal\nquit\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Session 'cli' active (sums mode)")
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, "60.0°")
	assert.Contains(t, text, `unknown command "bogus"`)
	assert.Contains(t, text, `unknown mode "diagonal"`)
	assert.Contains(t, text, "Session 'cli' saved.")

	stored, err := store.Load(ctx, "cli")
	require.NoError(t, err)
	assert.True(t, stored.Inputs.SumI.Equal(domain.Number(3)))

	// EOF also saves; the second run restores the values.
	out.Reset()
	err = RunSession(ctx, svc, RunOptions{SessionID: "cli", UseSums: true, In: strings.NewReader("show\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "restored (sums mode)")
	assert.Contains(t, out.String(), "**Axis:** 60.0°")

	// Asking for waves on the same session switches it; the sums are cleared.
	out.Reset()
	err = RunSession(ctx, svc, RunOptions{SessionID: "cli", UseSums: false, In: strings.NewReader(""), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "restored (waves mode)")
	stored, err = store.Load(ctx, "cli")
	require.NoError(t, err)
	assert.False(t, stored.UseSums)
	assert.True(t, stored.Inputs.SumI.Equal(domain.Number(0)))
}

func TestRunSession_ModeAndClear(t *testing.T) {
	svc := heartaxis.New()

	var out bytes.Buffer
	err := RunSession(context.Background(), svc, RunOptions{
		SessionID: "w",
		UseSums:   true,
		In:        strings.NewReader("mode waves\nr1 5\nr1\nreset\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "required")
	res, err := svc.Inspect(context.Background(), "w")
	require.NoError(t, err)
	assert.False(t, res.Session.UseSums)
	assert.True(t, res.Session.Inputs.R1.Equal(domain.Number(0)))
}

func TestRunSession_Cancelled(t *testing.T) {
	svc := heartaxis.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := svc.Start(context.Background(), "c", true)
	require.NoError(t, err)

	err = RunSession(context.Background(), svc, RunOptions{SessionID: "c", In: NewInterruptibleReader(strings.NewReader("sumI 1\n"), ctx.Done()), Out: &out})
	assert.NoError(t, err, "interruptions exit cleanly")
	assert.Contains(t, out.String(), "saved")
}
