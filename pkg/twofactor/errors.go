package twofactor

import "errors"

var (
	// ErrUserNotFound is returned when the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound is returned by repository updates against a missing record
	ErrRecordNotFound = errors.New("two-factor record not found")

	// ErrTotpNotSetUp is returned when TOTP enrollment has not been started
	ErrTotpNotSetUp = errors.New("TOTP not set up")

	// ErrTotpNotEnabled is returned when an operation requires active TOTP
	ErrTotpNotEnabled = errors.New("TOTP not enabled")

	// ErrInvalidTotpToken is returned when a TOTP token does not verify
	ErrInvalidTotpToken = errors.New("invalid TOTP token")

	// ErrInvalidCode is returned when neither a TOTP token nor a backup code matches
	ErrInvalidCode = errors.New("invalid code")

	// ErrSmsNotSetUp is returned when no SMS code is pending verification
	ErrSmsNotSetUp = errors.New("SMS not set up")

	// ErrSmsNotEnabled is returned when an operation requires active SMS 2FA
	ErrSmsNotEnabled = errors.New("SMS not enabled")

	// ErrSms2faNotEnabled is returned by the login challenge when SMS 2FA is off
	ErrSms2faNotEnabled = errors.New("SMS 2FA not enabled")

	// ErrSmsCodeExpired is returned when a pending SMS code has lapsed
	ErrSmsCodeExpired = errors.New("SMS code has expired")

	// ErrInvalidSmsCode is returned when an SMS code does not match
	ErrInvalidSmsCode = errors.New("invalid SMS code")

	// ErrSmsSendFailed is returned when outbound SMS delivery fails
	ErrSmsSendFailed = errors.New("failed to send SMS code")

	// ErrPhoneNotFound is returned when a disable challenge has no phone to target
	ErrPhoneNotFound = errors.New("phone number not found")

	// ErrPhoneNotSetUp is returned when resending a code without a known phone
	ErrPhoneNotSetUp = errors.New("phone number not set up")

	// ErrNoBackupCodes is returned when the backup code pool is empty
	ErrNoBackupCodes = errors.New("no backup codes available")

	// ErrInvalidBackupCode is returned when no hashed backup code matches
	ErrInvalidBackupCode = errors.New("invalid backup code")

	// ErrVerificationCodeSent signals that disabling SMS issued a fresh challenge
	// code; the caller must repeat the call with that code. Surfaced through the
	// error channel although it is not a failure in the usual sense.
	ErrVerificationCodeSent = errors.New("verification code sent, please provide the code to disable SMS")
)
