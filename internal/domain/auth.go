package domain

// AuthResult is what the client receives from a login, registration or login-code check.
// Token and User are set once the user is signed in; otherwise RequiresVerification
// tells the client a code was sent over VerificationMethod.
type AuthResult struct {
	Token                string
	User                 *User
	RequiresVerification bool
	VerificationMethod   Channel
}
