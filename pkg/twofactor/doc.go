// Package twofactor implements the two-factor authentication state machine:
// TOTP enrollment and verification, SMS code issuance and verification, and
// single-use backup codes.
//
// # Overview
//
// The twofactor package provides:
//   - TOTP (Time-based One-Time Password) setup with QR code enrollment
//   - SMS-based 2FA with code delivery and 10-minute expiry
//   - Single-use backup codes, stored hashed, for account recovery
//   - A generic verification entry point for login flows
//   - Best-effort security notifications on configuration changes
//
// Each user has at most one record holding the state of both method tracks.
// The two tracks (TOTP, SMS) enable and disable independently; the backup
// code pool is tied to TOTP.
//
// # Basic Usage
//
//	import "github.com/harborlabs/harbor-idm/pkg/twofactor"
//
//	repo := twofactor.NewInMemoryRepository()
//	svc := twofactor.NewService(repo, users, totpGen, hasher, smsSender,
//		twofactor.WithNotificationManager(nm),
//	)
//
//	// TOTP enrollment
//	setup, err := svc.SetupTotp(ctx, userID)
//	// user scans setup.QRCode, enters a code from the app
//	backupCodes, err := svc.VerifyAndEnableTotp(ctx, userID, userCode)
//	// show backupCodes to the user once; they are stored hashed
//
//	// Login-time verification
//	ok, err := svc.Verify2FA(ctx, userID, code, twofactor.MethodTotp)
//
// # SMS Flow
//
//	err := svc.SetupSms(ctx, userID, "+15551234567") // sends a 6-digit code
//	err = svc.VerifyAndEnableSms(ctx, userID, codeFromSms)
//
//	// at login
//	err = svc.Send2FACode(ctx, userID)
//	ok, err := svc.Verify2FA(ctx, userID, codeFromSms, twofactor.MethodSms)
//
// Disabling SMS is a two-call protocol when no code is pending: the first
// call sends a challenge code and returns ErrVerificationCodeSent; the
// second call with that code completes the disable.
//
// # Storage
//
// Repository implementations are provided for PostgreSQL, JSON files and
// in-memory maps; NewRepository selects one by persistence type. Operations
// are read-modify-write without locking across requests; concurrent calls
// for the same user resolve last-write-wins.
//
// # Related Packages
//
//   - pkg/totp - secret generation, token verification, backup code generation
//   - pkg/hashing - one-way hashing for stored backup codes
//   - pkg/notification - SMS and email delivery
//   - pkg/user - user lookups for enrollment and notifications
package twofactor
