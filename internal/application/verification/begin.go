package verification

import (
	"context"
	"time"

	"github.com/go-otp-verify/internal/domain"
)

// BeginLogin runs the password step. When the server answers with a code step, a login
// session replacing any stored one is saved and returned. When it signs the user in
// straight away the credentials are saved and the returned session is nil.
func BeginLogin(ctx context.Context, api API, store Store, email, password string, method domain.Channel) (*domain.VerificationSession, *domain.AuthResult, error) {
	res, err := api.Login(ctx, email, password, method)
	if err != nil {
		return nil, nil, err
	}
	if !res.RequiresVerification {
		if err := store.SaveAuth(res.Token, res.User); err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	}
	ch := res.VerificationMethod
	if ch == "" {
		ch = method
	}
	if ch == "" {
		ch = domain.ChannelEmail
	}
	// Login codes are looked up by account email whatever channel delivered them.
	s := domain.NewLoginSession(ch, email, email, password)
	if err := save(store, s); err != nil {
		return nil, nil, err
	}
	return s, res, nil
}

// BeginRegistration creates the account and saves the email confirmation session the server starts.
func BeginRegistration(ctx context.Context, api API, store Store, req domain.CreateUserRequest) (*domain.VerificationSession, error) {
	res, err := api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := domain.ChannelEmail
	if res != nil && res.VerificationMethod != "" {
		ch = res.VerificationMethod
	}
	target := req.Email
	if ch == domain.ChannelPhone && req.Phone != nil {
		target = *req.Phone
	}
	s := domain.NewRegistrationSession(ch, target)
	if err := save(store, s); err != nil {
		return nil, err
	}
	return s, nil
}

// BeginConfirmation asks for a code to confirm target on ch for an existing account.
func BeginConfirmation(ctx context.Context, api API, store Store, ch domain.Channel, target string) (*domain.VerificationSession, error) {
	s := domain.NewRegistrationSession(ch, target)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var err error
	if ch == domain.ChannelPhone {
		err = api.SendPhoneOTP(ctx, target)
	} else {
		err = api.SendEmailOTP(ctx, target)
	}
	if err != nil {
		return nil, err
	}
	if err := save(store, s); err != nil {
		return nil, err
	}
	return s, nil
}

func save(store Store, s *domain.VerificationSession) error {
	s.StartedAt = time.Now().UTC()
	return store.Save(s)
}
