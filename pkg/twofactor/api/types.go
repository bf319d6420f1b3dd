package api

// StatusResponse summarizes the caller's two-factor configuration
type StatusResponse struct {
	TotpEnabled      bool `json:"totp_enabled"`
	SmsEnabled       bool `json:"sms_enabled"`
	PhoneVerified    bool `json:"phone_verified"`
	BackupCodesCount int  `json:"backup_codes_count"`
}

// SetupTotpResponse carries the enrollment material for the authenticator app
type SetupTotpResponse struct {
	Secret string `json:"secret"`
	QrCode string `json:"qr_code"`
}

// VerifyTotpRequest carries the token confirming TOTP enrollment
type VerifyTotpRequest struct {
	Token string `json:"token"`
}

// BackupCodesResponse returns freshly generated plaintext backup codes.
// They are shown exactly once and stored hashed.
type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// DisableTotpRequest carries the proof of possession for disabling TOTP:
// either a 6-digit token or an 8-character backup code
type DisableTotpRequest struct {
	Code string `json:"code"`
}

// SetupSmsRequest starts SMS enrollment for a phone number
type SetupSmsRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifySmsRequest carries the code received by SMS
type VerifySmsRequest struct {
	Code string `json:"code"`
}

// DisableSmsRequest carries the challenge code for disabling SMS 2FA.
// Code may be empty on the first call of the two-step protocol.
type DisableSmsRequest struct {
	Code string `json:"code"`
}

// VerifyBackupCodeRequest carries a single-use backup code
type VerifyBackupCodeRequest struct {
	Code string `json:"code"`
}

// VerifyBackupCodeResponse reports a successful backup code verification
type VerifyBackupCodeResponse struct {
	Valid          bool `json:"valid"`
	RemainingCodes int  `json:"remaining_codes"`
}

// RegenerateBackupCodesRequest carries the TOTP token authorizing a new pool
type RegenerateBackupCodesRequest struct {
	Token string `json:"token"`
}

// Verify2FARequest is the generic login-time verification request
type Verify2FARequest struct {
	Code   string `json:"code"`
	Method string `json:"method"`
}

// Verify2FAResponse reports the outcome of a generic verification
type Verify2FAResponse struct {
	Valid bool `json:"valid"`
}

// MessageResponse is a generic success message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
