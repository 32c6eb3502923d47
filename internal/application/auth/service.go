package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-otp-verify/internal/domain"
	"github.com/go-otp-verify/internal/pkg/id"
	"github.com/go-otp-verify/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required"`
	VerificationMethod string `json:"verificationMethod" validate:"omitempty,oneof=email phone"`
}

type VerifyLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// LoginResult is either a pending verification (RequiresVerification with Method)
// or an issued token for the user.
type LoginResult struct {
	RequiresVerification bool
	Method               domain.Channel
	Token                string
	User                 *domain.User
}

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	VerifyLoginOTP(ctx context.Context, req VerifyLoginRequest) (*LoginResult, error)
	SendOTP(ctx context.Context, ch domain.Channel, target string) error
	VerifyOTP(ctx context.Context, ch domain.Channel, target, code string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	MarkChannelConfirmed(ctx context.Context, userID string, ch domain.Channel) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	IncrementAttempts(ctx context.Context, userID, verType string) (int, error)
	Consume(ctx context.Context, userID, verType, codeHash string) error
	Delete(ctx context.Context, userID, verType string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
	Expiry() time.Duration
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

type service struct {
	userRepo         userStore
	verificationRepo verificationStore
	sessionRepo      sessionStore
	mailer           mailer
	smsSender        smsSender
	jwtProvider      jwtSigner
	notifier         notifier
	otpTTL           time.Duration
	maxAttempts      int
	loginOTPRequired bool
	now              func() time.Time
}

type ServiceDeps struct {
	UserRepo         userStore
	VerificationRepo verificationStore
	SessionRepo      sessionStore
	Mailer           mailer
	SMSSender        smsSender
	JWTProvider      jwtSigner
	Notifier         notifier
	OTPTTL           time.Duration
	MaxAttempts      int
	LoginOTPRequired bool
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		userRepo:         deps.UserRepo,
		verificationRepo: deps.VerificationRepo,
		sessionRepo:      deps.SessionRepo,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		jwtProvider:      deps.JWTProvider,
		notifier:         deps.Notifier,
		otpTTL:           deps.OTPTTL,
		maxAttempts:      deps.MaxAttempts,
		loginOTPRequired: deps.LoginOTPRequired,
		now:              time.Now,
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 10 * time.Minute
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 5
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if !domain.CanSelfRegister(req.Role) {
		return nil, fmt.Errorf("invalid role %q: %w", req.Role, domain.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if req.Phone != nil {
		if _, err := s.userRepo.GetByPhone(ctx, *req.Phone); err == nil {
			return nil, fmt.Errorf("phone already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	// The account exists either way; a failed send is recovered by the client's resend.
	if err := s.issue(ctx, u, domain.VerificationEmail, domain.ChannelEmail); err != nil {
		slog.Warn("failed to send registration code", "user_id", u.UserID, "err", err)
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if u.Enable == 0 {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	var ch domain.Channel
	switch {
	case req.VerificationMethod != "":
		if ch, err = domain.ParseChannel(req.VerificationMethod); err != nil {
			return nil, err
		}
	case s.loginOTPRequired:
		ch = domain.ChannelEmail
	default:
		return s.signIn(ctx, u)
	}
	if err := s.issue(ctx, u, domain.VerificationLogin, ch); err != nil {
		return nil, err
	}
	return &LoginResult{RequiresVerification: true, Method: ch}, nil
}

func (s *service) VerifyLoginOTP(ctx context.Context, req VerifyLoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.check(ctx, u.UserID, domain.VerificationLogin, req.OTP); err != nil {
		return nil, err
	}
	res, err := s.signIn(ctx, u)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, u.UserID, domain.NotificationNewSignIn, "New sign-in to your account was verified.")
	return res, nil
}

func (s *service) SendOTP(ctx context.Context, ch domain.Channel, target string) error {
	u, err := s.lookup(ctx, ch, target)
	if err != nil {
		return err
	}
	return s.issue(ctx, u, string(ch), ch)
}

func (s *service) VerifyOTP(ctx context.Context, ch domain.Channel, target, code string) error {
	u, err := s.lookup(ctx, ch, target)
	if err != nil {
		return err
	}
	if err := s.check(ctx, u.UserID, string(ch), code); err != nil {
		return err
	}
	if err := s.userRepo.MarkChannelConfirmed(ctx, u.UserID, ch); err != nil {
		return err
	}
	if ch == domain.ChannelPhone {
		s.notify(ctx, u.UserID, domain.NotificationPhoneConfirmed, "Your phone number was confirmed.")
	} else {
		s.notify(ctx, u.UserID, domain.NotificationEmailConfirmed, "Your email address was confirmed.")
	}
	return nil
}

func (s *service) lookup(ctx context.Context, ch domain.Channel, target string) (*domain.User, error) {
	var (
		u   *domain.User
		err error
	)
	switch ch {
	case domain.ChannelEmail:
		u, err = s.userRepo.GetByEmail(ctx, target)
	case domain.ChannelPhone:
		u, err = s.userRepo.GetByPhone(ctx, target)
	default:
		return nil, fmt.Errorf("unknown channel %q: %w", ch, domain.ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, nil
}

// issue stores a fresh code for (user, verType), replacing any earlier one, and delivers it over ch.
func (s *service) issue(ctx context.Context, u *domain.User, verType string, ch domain.Channel) error {
	target := u.Email
	if ch == domain.ChannelPhone {
		if u.Phone == nil || *u.Phone == "" {
			return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
		}
		target = *u.Phone
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      verType,
		Channel:   ch,
		CodeHash:  otp.Hash(code),
		ExpiresAt: s.now().Add(s.otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.deliver(ctx, ch, target, code)
}

func (s *service) deliver(ctx context.Context, ch domain.Channel, target, code string) error {
	minutes := int(s.otpTTL / time.Minute)
	msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
	if ch == domain.ChannelPhone {
		if s.smsSender == nil {
			return errors.New("sms delivery is not configured")
		}
		return s.smsSender.SendSMS(ctx, target, msg)
	}
	return s.mailer.SendEmail(target, "Your verification code", msg)
}

// check consumes the stored code when it matches. Wrong codes count against the
// attempt limit; reaching it drops the record so a new code must be requested.
func (s *service) check(ctx context.Context, userID, verType, code string) error {
	if !otp.Valid(code) {
		return fmt.Errorf("code must be %d digits: %w", otp.Digits, domain.ErrBadRequest)
	}
	v, err := s.verificationRepo.Get(ctx, userID, verType)
	if err != nil {
		return fmt.Errorf("no pending code: %w", domain.ErrNotFound)
	}
	if v.ExpiresAt < s.now().Unix() {
		s.discard(ctx, userID, verType)
		return fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if v.Attempts >= s.maxAttempts {
		s.discard(ctx, userID, verType)
		return fmt.Errorf("request a new code: %w", domain.ErrTooManyAttempts)
	}
	if !otp.Equal(code, v.CodeHash) {
		n, err := s.verificationRepo.IncrementAttempts(ctx, userID, verType)
		if err != nil {
			slog.Warn("failed to count verification attempt", "user_id", userID, "type", verType, "err", err)
		} else if n >= s.maxAttempts {
			s.discard(ctx, userID, verType)
			return fmt.Errorf("request a new code: %w", domain.ErrTooManyAttempts)
		}
		return fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	// Only the request that removes this exact record wins; a concurrent submission of
	// the same code, or one racing a reissue, finds it gone.
	if err := s.verificationRepo.Consume(ctx, userID, verType, v.CodeHash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("code already used: %w", domain.ErrUnauthorized)
		}
		return err
	}
	return nil
}

func (s *service) discard(ctx context.Context, userID, verType string) {
	if err := s.verificationRepo.Delete(ctx, userID, verType); err != nil {
		slog.Warn("failed to delete verification record", "user_id", userID, "type", verType, "err", err)
	}
}

func (s *service) signIn(ctx context.Context, u *domain.User) (*LoginResult, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    u.UserID,
		Enable:    true,
		ExpiresAt: now.Add(s.jwtProvider.Expiry()).Unix(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *service) notify(ctx context.Context, userID, kind, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		slog.Warn("failed to write notification", "user_id", userID, "kind", kind, "err", err)
	}
}
