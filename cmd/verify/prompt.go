package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/domain"
)

const promptHelp = `Type the 6-digit code, or one digit at a time.
  <   erase the current digit
  r   send a new code once the timer runs out
  q   stop here; resume later with "verify code"`

// prompt drives a verification flow from line input until it succeeds, the user quits,
// input ends, or ctx is cancelled. Quitting keeps the stored session.
func (a *app) prompt(ctx context.Context, session *domain.VerificationSession) error {
	nav := &terminalNavigator{out: a.out}
	ready := make(chan struct{}, 1)
	// a resumed session keeps whatever is left of its cooldown
	countdown := verification.NewCountdown(verification.ResendCooldown,
		verification.WithRemaining(verification.CooldownLeft(session.StartedAt, time.Now())),
		verification.WithInterval(a.tick),
		verification.WithTickHook(func(remaining int) {
			if remaining == 0 {
				select {
				case ready <- struct{}{}:
				default:
				}
			}
		}),
	)
	flow, err := verification.NewFlow(session, verification.FlowDeps{
		API:       a.api,
		Store:     a.store,
		Navigator: nav,
		Countdown: countdown,
	})
	if err != nil {
		return err
	}
	flow.Start(ctx)
	defer flow.Close()

	done := make(chan struct{})
	defer close(done)
	lines := a.lines(done)

	fmt.Fprintln(a.out, promptHelp)
	for {
		a.status(flow)
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return ctx.Err()
		case <-ready:
			fmt.Fprintln(a.out, "\nYou can now ask for a new code with r.")
			continue
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(a.out, "\nInput closed; the verification was kept.")
			return nil
		}

		buf := flow.Buffer()
		switch {
		case line == "q":
			fmt.Fprintln(a.out, `Stopped. Run "verify code" to continue.`)
			return nil
		case line == "r":
			a.resend(ctx, flow)
			continue
		case line == "<":
			buf.Backspace(buf.Focus())
			continue
		case line == "":
		case len(line) == 1:
			if !buf.Update(buf.Focus(), line) {
				fmt.Fprintln(a.out, "Only digits are accepted.")
				continue
			}
		default:
			if !buf.PasteFill(line) {
				fmt.Fprintf(a.out, "A code is %d digits.\n", verification.CodeLength)
				continue
			}
		}

		if !flow.CanSubmit() {
			continue
		}
		err := flow.Submit(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, verification.ErrVerificationFailed):
			fmt.Fprintf(a.out, "%v. Check the code and try again.\n", err)
		default:
			return err
		}
	}
}

func (a *app) resend(ctx context.Context, flow *verification.Flow) {
	sent, err := flow.Resend(ctx)
	switch {
	case err != nil:
		fmt.Fprintln(a.out, err)
	case sent:
		fmt.Fprintf(a.out, "A new code was sent to %s.\n", flow.Session().Target)
	default:
		fmt.Fprintf(a.out, "You can ask for a new code in %s.\n", clock(flow.Countdown().Remaining()))
	}
}

func (a *app) status(flow *verification.Flow) {
	cells := flow.Buffer().Cells()
	shown := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "_"
		}
		shown[i] = c
	}
	resend := "r to resend"
	if left := flow.Countdown().Remaining(); left > 0 {
		resend = "resend in " + clock(left)
	}
	fmt.Fprintf(a.out, "[%s] %s > ", strings.Join(shown, " "), resend)
}

// lines feeds trimmed input lines until EOF or done is closed.
func (a *app) lines(done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			line, err := a.in.ReadString('\n')
			if line != "" {
				select {
				case ch <- strings.TrimSpace(line):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
