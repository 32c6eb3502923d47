package verification

import (
	"context"

	"github.com/go-otp-verify/internal/domain"
)

// API is the remote side of the flow. Implementations return an error for a
// rejected request as well as for a failed transport; the flow treats both alike.
type API interface {
	Login(ctx context.Context, email, password string, method domain.Channel) (*domain.AuthResult, error)
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error)
	VerifyLoginOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error)
	VerifyEmailOTP(ctx context.Context, email, otp string) error
	VerifyPhoneOTP(ctx context.Context, phone, otp string) error
	SendEmailOTP(ctx context.Context, email string) error
	SendPhoneOTP(ctx context.Context, phone string) error
}
