package dynamo

// Attribute names used in update expressions.
const (
	fieldEnable         = "enable"
	fieldUpdatedAt      = "updated_at"
	fieldRead           = "read"
	fieldAttempts       = "attempts"
	fieldCodeHash       = "code_hash"
	fieldEmailConfirmed = "email_confirmed"
	fieldPhoneConfirmed = "phone_confirmed"
	fieldExpiresAt      = "expires_at"
)

// Secondary indexes.
const (
	indexEmail       = "email-index"
	indexPhone       = "phone-index"
	indexUserID      = "user_id-index"
	indexUserCreated = "user_id-created_at-index"
)
