package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/presentation/tui"
	"github.com/aretw0/heartaxis/pkg/domain"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	SessionID string
	UseSums   bool
	In        io.Reader
	Out       io.Writer

	// Render turns markdown into terminal output. Nil prints it raw.
	Render func(string) (string, error)
}

const helpText = `Commands:
  <field> <value>   set a field (sumI, sumIII, r1, qs1, r3, qs3); no value clears it
  mode sums|waves   switch the input mode
  reset             put every field back to its default
  show              print the full report
  quit              save and leave
`

// RunSession starts or restores a session and reads commands until quit,
// EOF or cancellation. The session is always saved on the way out.
func RunSession(ctx context.Context, svc *heartaxis.Service, opts RunOptions) error {
	res, err := svc.Start(ctx, opts.SessionID, opts.UseSums)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	sessionID := res.Session.ID

	if res.Restored {
		printSystemMessage(opts.Out, "Session '%s' restored (%s mode).", sessionID, res.Session.Mode())
	} else {
		printSystemMessage(opts.Out, "Session '%s' active (%s mode). Type 'help' for commands.", sessionID, res.Session.Mode())
	}
	show(opts, res)

	runErr := loop(ctx, svc, sessionID, opts)

	// Final save runs even when ctx was cancelled by a signal.
	if _, err := svc.End(context.WithoutCancel(ctx), sessionID); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	printSystemMessage(opts.Out, "Session '%s' saved.", sessionID)
	return handleExecutionError(runErr)
}

func loop(ctx context.Context, svc *heartaxis.Service, sessionID string, opts RunOptions) error {
	scanner := bufio.NewScanner(NewInterruptibleReader(opts.In, ctx.Done()))
	for {
		fmt.Fprint(opts.Out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return io.EOF
		}

		cmd, arg := splitCommand(scanner.Text())
		var (
			res *heartaxis.Result
			err error
		)
		switch cmd {
		case "":
			continue
		case "quit", "exit", "end":
			return nil
		case "help":
			fmt.Fprint(opts.Out, helpText)
			continue
		case "show":
			res, err = svc.Inspect(ctx, sessionID)
			if err == nil {
				show(opts, res)
			}
		case "reset":
			res, err = svc.Reset(ctx, sessionID)
		case "mode":
			switch arg {
			case "sums":
				res, err = svc.SwitchMode(ctx, sessionID, true)
			case "waves":
				res, err = svc.SwitchMode(ctx, sessionID, false)
			default:
				err = fmt.Errorf("unknown mode %q (want sums or waves)", arg)
			}
		default:
			var field domain.Field
			field, err = domain.ParseField(cmd)
			if err == nil {
				res, err = svc.Edit(ctx, sessionID, field, domain.ParseValue(arg))
			}
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, domain.ErrUnknownField) {
				fmt.Fprintf(opts.Out, "unknown command %q, type 'help'\n", cmd)
				continue
			}
			fmt.Fprintf(opts.Out, "error: %v\n", err)
			continue
		}
		if cmd != "show" {
			tui.PrintOutcome(opts.Out, res.Outcome)
		}
	}
}

// splitCommand accepts "field value" and "field=value".
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, " =\t"); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

func show(opts RunOptions, res *heartaxis.Result) {
	md := tui.Report(res.Session.Mode(), res.Session.Inputs, res.Outcome)
	if opts.Render != nil {
		if out, err := opts.Render(md); err == nil {
			md = out
		}
	}
	fmt.Fprintln(opts.Out, md)
}
