package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	var (
		password string
		method   string
	)
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in, entering the code sent by email or SMS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			ch := domain.Channel(method)
			if method != "" {
				var err error
				if ch, err = domain.ParseChannel(method); err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				if password, err = a.readSecret("Password: "); err != nil {
					return err
				}
			}
			session, res, err := verification.BeginLogin(cmd.Context(), a.api, a.store, email, password, ch)
			if err != nil {
				return err
			}
			if session == nil {
				if res.User == nil {
					return errors.New("server did not return the signed-in user")
				}
				fmt.Fprintf(a.out, "Signed in as %s\n", res.User.Email)
				(&terminalNavigator{out: a.out}).Navigate(verification.RouteForRole(res.User.Role), "")
				return nil
			}
			fmt.Fprintf(a.out, "A code was sent by %s.\n", session.Channel)
			return a.prompt(cmd.Context(), session)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	cmd.Flags().StringVarP(&method, "method", "m", "", "code channel: email or phone")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var req domain.CreateUserRequest
	var phone string
	cmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account and confirm its email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Email = args[0]
			if phone != "" {
				req.Phone = &phone
			}
			if req.Password == "" {
				var err error
				if req.Password, err = a.readSecret("Password: "); err != nil {
					return err
				}
			}
			session, err := verification.BeginRegistration(cmd.Context(), a.api, a.store, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account created. A code was sent to %s.\n", session.Target)
			return a.prompt(cmd.Context(), session)
		},
	}
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Role, "role", domain.RoleCustomer, "account role")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number in E.164 form")
	return cmd
}

func newConfirmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm email|phone TARGET",
		Short: "Send a new code to confirm an email address or phone number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := domain.ParseChannel(args[0])
			if err != nil {
				return err
			}
			session, err := verification.BeginConfirmation(cmd.Context(), a.api, a.store, ch, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "A code was sent to %s.\n", session.Target)
			return a.prompt(cmd.Context(), session)
		},
	}
}

func newCodeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Resume the pending verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := verification.Resume(a.store, codeTTL, time.Now())
			if errors.Is(err, verification.ErrNoSession) {
				return errors.New("nothing to verify; run login, register or confirm first")
			}
			if err != nil {
				return err
			}
			return a.prompt(cmd.Context(), session)
		},
	}
}

func newDiscardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Forget the pending verification, including any stored password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Pending verification discarded.")
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pending verification and the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := verification.Resume(a.store, codeTTL, time.Now())
			switch {
			case errors.Is(err, verification.ErrNoSession):
				fmt.Fprintln(a.out, "No pending verification.")
			case err != nil:
				return err
			default:
				kind := "confirmation"
				if s.IsLoginFlow {
					kind = "sign-in"
				}
				fmt.Fprintf(a.out, "Pending %s code by %s for %s, started %s.\n",
					kind, s.Channel, s.Target, s.StartedAt.Local().Format(time.Kitchen))
			}

			_, user, err := a.auth.LoadAuth()
			switch {
			case errors.Is(err, domain.ErrNotFound):
				fmt.Fprintln(a.out, "Not signed in.")
			case err != nil:
				return err
			default:
				fmt.Fprintf(a.out, "Signed in as %s (%s).\n", user.Email, user.Role)
			}
			return nil
		},
	}
}

func (a *app) readSecret(label string) (string, error) {
	if a.tty {
		if s, ok, err := readTerminalSecret(label, a.out); ok {
			return s, err
		}
	}
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
