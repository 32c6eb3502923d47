package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-otp-verify/internal/domain"
)

var (
	ErrIncompleteCode     = errors.New("enter all 6 digits of the code")
	ErrSubmitInFlight     = errors.New("a verification request is already in progress")
	ErrVerificationFailed = errors.New("verification failed")
	ErrResendFailed       = errors.New("could not resend the code")
	ErrAlreadyVerified    = errors.New("verification already completed")
)

// RegistrationVerifiedMessage is shown on the login route after a channel is confirmed.
const RegistrationVerifiedMessage = "Verification successful. Please sign in."

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type FlowDeps struct {
	API       API
	Store     Store
	Navigator Navigator
	// Countdown defaults to ResendCooldown seconds ticking once a second.
	Countdown *Countdown
	// OnState, when set, is called with every state the flow enters. It runs with
	// the flow locked and must not call back into it.
	OnState func(State)
}

// Flow drives one pending verification: code entry, submission, and resend.
// It is safe for use from several goroutines; only one submission runs at a time.
type Flow struct {
	session *domain.VerificationSession
	api     API
	store   Store
	nav     Navigator
	onState func(State)

	buf       *CodeBuffer
	countdown *Countdown

	mu     sync.Mutex
	state  State
	resend bool
	cancel context.CancelFunc
}

func NewFlow(session *domain.VerificationSession, deps FlowDeps) (*Flow, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	cd := deps.Countdown
	if cd == nil {
		cd = NewCountdown(ResendCooldown)
	}
	return &Flow{
		session:   session,
		api:       deps.API,
		store:     deps.Store,
		nav:       deps.Navigator,
		onState:   deps.OnState,
		buf:       NewCodeBuffer(),
		countdown: cd,
	}, nil
}

// Start runs the resend countdown until ctx is done or Close is called.
func (f *Flow) Start(ctx context.Context) {
	f.mu.Lock()
	if f.cancel != nil {
		f.mu.Unlock()
		return
	}
	ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()
	f.countdown.Start(ctx)
}

// Close stops the countdown and waits for its goroutine. The stored session is left
// as is so the verification can be resumed later.
func (f *Flow) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	f.countdown.Wait()
}

func (f *Flow) Session() *domain.VerificationSession { return f.session }
func (f *Flow) Buffer() *CodeBuffer { return f.buf }
func (f *Flow) Countdown() *Countdown { return f.countdown }

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanSubmit reports whether the submit control should be enabled.
func (f *Flow) CanSubmit() bool {
	return f.State() == StateIdle && f.buf.Complete()
}

// Submit sends the entered code to the endpoint matching the flow. A failed attempt
// clears the buffer and returns the flow to idle without touching the countdown.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInFlight
	case StateSuccess:
		f.mu.Unlock()
		return ErrAlreadyVerified
	}
	if !f.buf.Complete() {
		f.mu.Unlock()
		return ErrIncompleteCode
	}
	code := f.buf.String()
	f.setStateLocked(StateSubmitting)
	f.mu.Unlock()

	err := f.verify(ctx, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.buf.Clear()
		f.setStateLocked(StateFailed)
		f.setStateLocked(StateIdle)
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	f.setStateLocked(StateSuccess)
	return nil
}

func (f *Flow) verify(ctx context.Context, code string) error {
	s := f.session
	if s.IsLoginFlow {
		res, err := f.api.VerifyLoginOTP(ctx, s.Credentials.Email, code)
		if err != nil {
			return err
		}
		if res == nil || res.Token == "" || res.User == nil {
			return errors.New("server did not return a token")
		}
		if err := f.store.SaveAuth(res.Token, res.User); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		f.finish()
		f.nav.Navigate(RouteForRole(res.User.Role), "")
		return nil
	}

	var err error
	if s.Channel == domain.ChannelPhone {
		err = f.api.VerifyPhoneOTP(ctx, s.Target, code)
	} else {
		err = f.api.VerifyEmailOTP(ctx, s.Target, code)
	}
	if err != nil {
		return err
	}
	f.finish()
	f.nav.Navigate(RouteLogin, RegistrationVerifiedMessage)
	return nil
}

// finish drops the stored session; the code is already consumed server side so a
// failure here is only logged.
func (f *Flow) finish() {
	if err := f.store.Clear(); err != nil {
		slog.Warn("failed to clear verification session", "err", err)
	}
}

// Resend asks for a new code once the countdown has reached zero. While it is still
// running, while a submission or another resend is outstanding, or once the flow has
// succeeded, the call does nothing and reports sent=false. On success the countdown
// restarts, the buffer is cleared and the stored session is re-stamped.
func (f *Flow) Resend(ctx context.Context) (sent bool, err error) {
	f.mu.Lock()
	if f.state != StateIdle || f.resend || f.countdown.Remaining() > 0 {
		f.mu.Unlock()
		return false, nil
	}
	f.resend = true
	f.mu.Unlock()

	err = f.issue(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.resend = false
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrResendFailed, err)
	}
	f.countdown.Reset()
	f.buf.Clear()
	f.session.StartedAt = time.Now().UTC()
	if err := f.store.Save(f.session); err != nil {
		slog.Warn("failed to save verification session", "err", err)
	}
	return true, nil
}

func (f *Flow) issue(ctx context.Context) error {
	s := f.session
	switch {
	case s.IsLoginFlow:
		_, err := f.api.Login(ctx, s.Credentials.Email, s.Credentials.Password, s.Channel)
		return err
	case s.Channel == domain.ChannelPhone:
		return f.api.SendPhoneOTP(ctx, s.Target)
	default:
		return f.api.SendEmailOTP(ctx, s.Target)
	}
}

func (f *Flow) setStateLocked(s State) {
	f.state = s
	if f.onState != nil {
		f.onState(s)
	}
}
