package main

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/config"
	"github.com/go-otp-verify/internal/domain"
	"github.com/go-otp-verify/internal/infrastructure/apiclient"
	"github.com/go-otp-verify/internal/infrastructure/boltstore"
	"github.com/spf13/cobra"
)

// codeTTL matches the server default; older pending sessions are dropped on resume.
const codeTTL = 10 * time.Minute

// authLoader reads the credentials saved by the last completed sign-in.
type authLoader interface {
	LoadAuth() (string, *domain.User, error)
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg   *config.ClientConfig
	api   verification.API
	store verification.Store
	auth  authLoader
	close func() error
	in    *bufio.Reader
	out   io.Writer
	// tty is set when input comes from the process stdin, enabling hidden password entry.
	tty   bool

	// tick is the countdown period.
	tick time.Duration
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{
		cfg:  config.LoadClient(),
		in:   bufio.NewReader(in),
		out:  out,
		tty:  in == io.Reader(os.Stdin),
		tick: time.Second,
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "verify",
		Short:         "Sign in or confirm an account with a one-time code",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.open()
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.cfg.APIBaseURL, "api", a.cfg.APIBaseURL, "API base URL")
	root.PersistentFlags().StringVar(&a.cfg.StorePath, "store", a.cfg.StorePath, "file holding the pending verification")

	root.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newConfirmCommand(a),
		newCodeCommand(a),
		newDiscardCommand(a),
		newStatusCommand(a),
	)
	return root
}

func (a *app) open() error {
	if a.api == nil {
		a.api = apiclient.New(a.cfg)
	}
	store, err := boltstore.Open(a.cfg.StorePath)
	if err != nil {
		return err
	}
	a.store, a.auth, a.close = store, store, store.Close
	return nil
}

// shutdown releases the store opened for the command, if any.
func (a *app) shutdown() error {
	if a.close == nil {
		return nil
	}
	err := a.close()
	a.close = nil
	return err
}
