package twofactor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harborlabs/harbor-idm/pkg/hashing"
	"github.com/harborlabs/harbor-idm/pkg/notification"
	"github.com/harborlabs/harbor-idm/pkg/totp"
	"github.com/harborlabs/harbor-idm/pkg/user"
)

// Method selects which second factor a generic verification applies to.
type Method string

const (
	MethodTotp   Method = "totp"
	MethodSms    Method = "sms"
	MethodBackup Method = "backup"
)

const (
	// DefaultSmsCodeTTL is how long an issued SMS code stays valid.
	DefaultSmsCodeTTL = 10 * time.Minute
	// DefaultBackupCodeCount is the size of a freshly generated backup code pool.
	DefaultBackupCodeCount = 10
)

// Status summarizes a user's two-factor configuration.
type Status struct {
	TotpEnabled      bool `json:"totp_enabled"`
	SmsEnabled       bool `json:"sms_enabled"`
	PhoneVerified    bool `json:"phone_verified"`
	BackupCodesCount int  `json:"backup_codes_count"`
}

// TotpSetup carries the enrollment material returned by SetupTotp.
type TotpSetup struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

// BackupCodeResult reports a successful backup code verification.
// RemainingCodes is the pool size before the matched code was removed.
type BackupCodeResult struct {
	Valid          bool `json:"valid"`
	RemainingCodes int  `json:"remaining_codes"`
}

// SmsSender delivers a text message to an E.164 phone number.
type SmsSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// TwoFactorService drives setup, verification and disablement of the three
// second-factor methods: TOTP, SMS and backup codes.
type TwoFactorService interface {
	GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error)
	SetupTotp(ctx context.Context, userID uuid.UUID) (*TotpSetup, error)
	VerifyAndEnableTotp(ctx context.Context, userID uuid.UUID, token string) ([]string, error)
	DisableTotp(ctx context.Context, userID uuid.UUID, code string) error
	SetupSms(ctx context.Context, userID uuid.UUID, phoneNumber string) error
	VerifyAndEnableSms(ctx context.Context, userID uuid.UUID, code string) error
	DisableSms(ctx context.Context, userID uuid.UUID, code string) error
	ResendSmsCode(ctx context.Context, userID uuid.UUID) error
	VerifyBackupCode(ctx context.Context, userID uuid.UUID, code string) (*BackupCodeResult, error)
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, totpToken string) ([]string, error)
	Verify2FA(ctx context.Context, userID uuid.UUID, code string, method Method) (bool, error)
	Has2FAEnabled(ctx context.Context, userID uuid.UUID) (bool, error)
	Send2FACode(ctx context.Context, userID uuid.UUID) error
}

// Service implements TwoFactorService on top of a Repository, the TOTP
// generator and the hashing and SMS capabilities.
type Service struct {
	repo                Repository
	users               user.Repository
	totp                *totp.Generator
	hasher              hashing.Hasher
	sms                 SmsSender
	notificationManager *notification.NotificationManager
	smsCodeTTL          time.Duration
	backupCodeCount     int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSmsCodeTTL overrides how long issued SMS codes stay valid.
func WithSmsCodeTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.smsCodeTTL = ttl
	}
}

// WithBackupCodeCount overrides the number of backup codes generated per pool.
func WithBackupCodeCount(count int) ServiceOption {
	return func(s *Service) {
		s.backupCodeCount = count
	}
}

// WithNotificationManager enables best-effort security notification emails on
// two-factor configuration changes.
func WithNotificationManager(nm *notification.NotificationManager) ServiceOption {
	return func(s *Service) {
		s.notificationManager = nm
	}
}

// NewService creates a two-factor service
func NewService(repo Repository, users user.Repository, totpGen *totp.Generator, hasher hashing.Hasher, sms SmsSender, opts ...ServiceOption) *Service {
	s := &Service{
		repo:            repo,
		users:           users,
		totp:            totpGen,
		hasher:          hasher,
		sms:             sms,
		smsCodeTTL:      DefaultSmsCodeTTL,
		backupCodeCount: DefaultBackupCodeCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetStatus returns the user's two-factor configuration summary. A user with
// no record reports everything off.
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil {
		return &Status{}, nil
	}

	return &Status{
		TotpEnabled:      rec.TotpEnabled,
		SmsEnabled:       rec.SmsEnabled,
		PhoneVerified:    rec.PhoneVerified,
		BackupCodesCount: len(rec.BackupCodes),
	}, nil
}

// SetupTotp starts or restarts TOTP enrollment: it generates a fresh secret,
// stores it unconfirmed and returns the secret with a QR code for scanning.
// Each call overwrites any pending secret.
func (s *Service) SetupTotp(ctx context.Context, userID uuid.UUID) (*TotpSetup, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		slog.Error("Failed to find user", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	secret, uri, err := s.totp.GenerateSecret(u.Email)
	if err != nil {
		return nil, err
	}

	qrCode, err := s.totp.GenerateQRCode(uri)
	if err != nil {
		return nil, err
	}

	pending := RecordChanges{
		TotpSecret:  strPtr(secret),
		TotpEnabled: boolPtr(false),
	}
	if _, err := s.repo.Upsert(ctx, userID, UpsertParams{Create: pending, Update: pending}); err != nil {
		slog.Error("Failed to store pending totp secret", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to store pending totp secret: %w", err)
	}

	return &TotpSetup{Secret: secret, QRCode: qrCode}, nil
}

// VerifyAndEnableTotp confirms a pending enrollment with a token from the
// authenticator app. On success TOTP becomes the active second factor and a
// fresh pool of backup codes is generated; the plaintext codes are returned
// exactly once.
func (s *Service) VerifyAndEnableTotp(ctx context.Context, userID uuid.UUID, token string) ([]string, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || rec.TotpSecret == "" {
		return nil, ErrTotpNotSetUp
	}

	if !s.totp.VerifyToken(rec.TotpSecret, token) {
		return nil, ErrInvalidTotpToken
	}

	codes, err := s.totp.GenerateBackupCodes(s.backupCodeCount)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hashBackupCodes(codes)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.Update(ctx, userID, RecordChanges{
		TotpEnabled:  boolPtr(true),
		TotpVerified: boolPtr(true),
		BackupCodes:  hashed,
	})
	if err != nil {
		slog.Error("Failed to enable totp", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to enable totp: %w", err)
	}

	s.notifyTwofaChanged(ctx, userID, "TOTP", "enabled")
	return codes, nil
}

// DisableTotp turns TOTP off. The caller proves possession with either a
// 6-digit TOTP token or one of the 8-character backup codes; either success
// path clears the secret and empties the backup code pool.
func (s *Service) DisableTotp(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || !rec.TotpEnabled {
		return ErrTotpNotEnabled
	}

	valid := false
	if len(code) == 6 {
		valid = s.totp.VerifyToken(rec.TotpSecret, code)
	} else if len(code) == 8 {
		matched, _, err := s.matchBackupCode(rec.BackupCodes, code)
		if err != nil {
			return err
		}
		valid = matched >= 0
	}
	if !valid {
		return ErrInvalidCode
	}

	_, err = s.repo.Update(ctx, userID, RecordChanges{
		TotpEnabled:  boolPtr(false),
		TotpVerified: boolPtr(false),
		TotpSecret:   strPtr(""),
		BackupCodes:  []string{},
	})
	if err != nil {
		slog.Error("Failed to disable totp", "userID", userID, "error", err)
		return fmt.Errorf("failed to disable totp: %w", err)
	}

	s.notifyTwofaChanged(ctx, userID, "TOTP", "disabled")
	return nil
}

// SetupSms starts SMS enrollment for a phone number: it sends a verification
// code and stores it pending. Nothing is persisted when the send fails.
// Re-running setup against an existing record refreshes the phone number and
// code but leaves the enabled flags alone.
func (s *Service) SetupSms(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	code, err := generateSmsCode()
	if err != nil {
		return err
	}

	if err := s.sendSmsCode(ctx, phoneNumber, code); err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.smsCodeTTL)
	_, err = s.repo.Upsert(ctx, userID, UpsertParams{
		Create: RecordChanges{
			PhoneNumber:      strPtr(phoneNumber),
			SmsCode:          strPtr(code),
			SmsCodeExpiresAt: &expiresAt,
			SmsEnabled:       boolPtr(false),
			PhoneVerified:    boolPtr(false),
		},
		Update: RecordChanges{
			PhoneNumber:      strPtr(phoneNumber),
			SmsCode:          strPtr(code),
			SmsCodeExpiresAt: &expiresAt,
		},
	})
	if err != nil {
		slog.Error("Failed to store pending sms code", "userID", userID, "error", err)
		return fmt.Errorf("failed to store pending sms code: %w", err)
	}

	return nil
}

// VerifyAndEnableSms confirms the pending code and makes SMS the active
// second factor.
func (s *Service) VerifyAndEnableSms(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || rec.SmsCode == "" {
		return ErrSmsNotSetUp
	}
	if rec.SmsCodeExpiresAt != nil && !time.Now().UTC().Before(*rec.SmsCodeExpiresAt) {
		return ErrSmsCodeExpired
	}
	if rec.SmsCode != code {
		return ErrInvalidSmsCode
	}

	_, err = s.repo.Update(ctx, userID, RecordChanges{
		SmsEnabled:    boolPtr(true),
		PhoneVerified: boolPtr(true),
		SmsCode:       strPtr(""),
	})
	if err != nil {
		slog.Error("Failed to enable sms 2fa", "userID", userID, "error", err)
		return fmt.Errorf("failed to enable sms 2fa: %w", err)
	}

	s.notifyTwofaChanged(ctx, userID, "SMS", "enabled")
	return nil
}

// DisableSms turns SMS 2FA off. When no code is pending, the call issues a
// fresh challenge to the stored phone number and fails with
// ErrVerificationCodeSent; the caller repeats the call with that code.
func (s *Service) DisableSms(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || !rec.SmsEnabled {
		return ErrSmsNotEnabled
	}

	if rec.SmsCode == "" {
		if rec.PhoneNumber == "" {
			return ErrPhoneNotFound
		}
		if err := s.issueSmsCode(ctx, userID, rec.PhoneNumber); err != nil {
			return err
		}
		return ErrVerificationCodeSent
	}

	if rec.SmsCodeExpiresAt != nil && !time.Now().UTC().Before(*rec.SmsCodeExpiresAt) {
		return ErrSmsCodeExpired
	}
	if rec.SmsCode != code {
		return ErrInvalidSmsCode
	}

	_, err = s.repo.Update(ctx, userID, RecordChanges{
		SmsEnabled:    boolPtr(false),
		PhoneVerified: boolPtr(false),
		PhoneNumber:   strPtr(""),
		SmsCode:       strPtr(""),
	})
	if err != nil {
		slog.Error("Failed to disable sms 2fa", "userID", userID, "error", err)
		return fmt.Errorf("failed to disable sms 2fa: %w", err)
	}

	s.notifyTwofaChanged(ctx, userID, "SMS", "disabled")
	return nil
}

// ResendSmsCode issues a fresh code to the stored phone number, superseding
// any pending one. It only requires a known phone, not active SMS 2FA.
func (s *Service) ResendSmsCode(ctx context.Context, userID uuid.UUID) error {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || rec.PhoneNumber == "" {
		return ErrPhoneNotSetUp
	}

	return s.issueSmsCode(ctx, userID, rec.PhoneNumber)
}

// VerifyBackupCode consumes one backup code. The returned RemainingCodes is
// the pool size before the matched code was removed; callers relying on the
// count treat it that way.
func (s *Service) VerifyBackupCode(ctx context.Context, userID uuid.UUID, code string) (*BackupCodeResult, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || len(rec.BackupCodes) == 0 {
		return nil, ErrNoBackupCodes
	}

	matched, remaining, err := s.matchBackupCode(rec.BackupCodes, code)
	if err != nil {
		return nil, err
	}
	if matched < 0 {
		return nil, ErrInvalidBackupCode
	}

	poolSize := len(rec.BackupCodes)
	if _, err := s.repo.Update(ctx, userID, RecordChanges{BackupCodes: remaining}); err != nil {
		slog.Error("Failed to consume backup code", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to consume backup code: %w", err)
	}

	return &BackupCodeResult{Valid: true, RemainingCodes: poolSize}, nil
}

// RegenerateBackupCodes replaces the backup code pool wholesale. The caller
// proves possession of the active TOTP factor with a current token; the new
// plaintext codes are returned exactly once.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, totpToken string) ([]string, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || !rec.TotpEnabled || rec.TotpSecret == "" {
		return nil, ErrTotpNotEnabled
	}

	if !s.totp.VerifyToken(rec.TotpSecret, totpToken) {
		return nil, ErrInvalidTotpToken
	}

	codes, err := s.totp.GenerateBackupCodes(s.backupCodeCount)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hashBackupCodes(codes)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Update(ctx, userID, RecordChanges{BackupCodes: hashed}); err != nil {
		slog.Error("Failed to regenerate backup codes", "userID", userID, "error", err)
		return nil, fmt.Errorf("failed to regenerate backup codes: %w", err)
	}

	return codes, nil
}

// Verify2FA is the generic dispatcher used by the login flow. Business
// failures collapse to false; only the storage lookup error propagates.
func (s *Service) Verify2FA(ctx context.Context, userID uuid.UUID, code string, method Method) (bool, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return false, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil {
		return false, nil
	}

	switch method {
	case MethodTotp:
		if !rec.TotpEnabled || rec.TotpSecret == "" {
			return false, nil
		}
		return s.totp.VerifyToken(rec.TotpSecret, code), nil

	case MethodSms:
		if !rec.SmsEnabled || rec.SmsCode == "" {
			return false, nil
		}
		if rec.SmsCodeExpiresAt != nil && !time.Now().UTC().Before(*rec.SmsCodeExpiresAt) {
			return false, nil
		}
		if rec.SmsCode != code {
			return false, nil
		}
		now := time.Now().UTC()
		_, err := s.repo.Update(ctx, userID, RecordChanges{
			SmsCode:    strPtr(""),
			LastUsedAt: &now,
		})
		if err != nil {
			slog.Error("Failed to consume sms code", "userID", userID, "error", err)
			return false, nil
		}
		return true, nil

	case MethodBackup:
		if len(rec.BackupCodes) == 0 {
			return false, nil
		}
		matched, remaining, err := s.matchBackupCode(rec.BackupCodes, code)
		if err != nil {
			slog.Error("Failed to match backup code", "userID", userID, "error", err)
			return false, nil
		}
		if matched < 0 {
			return false, nil
		}
		if _, err := s.repo.Update(ctx, userID, RecordChanges{BackupCodes: remaining}); err != nil {
			slog.Error("Failed to consume backup code", "userID", userID, "error", err)
			return false, nil
		}
		return true, nil

	default:
		slog.Warn("Unknown two-factor method", "userID", userID, "method", method)
		return false, nil
	}
}

// Has2FAEnabled reports whether any second factor is active for the user.
func (s *Service) Has2FAEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return false, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	return rec.TotpEnabled || rec.SmsEnabled, nil
}

// Send2FACode issues and sends a fresh login challenge code. Unlike
// ResendSmsCode it requires SMS 2FA to be active.
func (s *Service) Send2FACode(ctx context.Context, userID uuid.UUID) error {
	rec, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to get two-factor record", "userID", userID, "error", err)
		return fmt.Errorf("failed to get two-factor record: %w", err)
	}
	if rec == nil || !rec.SmsEnabled || rec.PhoneNumber == "" {
		return ErrSms2faNotEnabled
	}

	return s.issueSmsCode(ctx, userID, rec.PhoneNumber)
}

// issueSmsCode generates a fresh code, sends it and persists it with a new
// expiry, superseding any pending code.
func (s *Service) issueSmsCode(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	code, err := generateSmsCode()
	if err != nil {
		return err
	}

	if err := s.sendSmsCode(ctx, phoneNumber, code); err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.smsCodeTTL)
	_, err = s.repo.Update(ctx, userID, RecordChanges{
		SmsCode:          strPtr(code),
		SmsCodeExpiresAt: &expiresAt,
	})
	if err != nil {
		slog.Error("Failed to store sms code", "userID", userID, "error", err)
		return fmt.Errorf("failed to store sms code: %w", err)
	}

	return nil
}

func (s *Service) sendSmsCode(ctx context.Context, phoneNumber, code string) error {
	message := fmt.Sprintf("Your verification code is: %s", code)
	if err := s.sms.Send(ctx, phoneNumber, message); err != nil {
		slog.Error("Failed to send sms code", "to", phoneNumber, "error", err)
		return ErrSmsSendFailed
	}
	return nil
}

// hashBackupCodes hashes a batch of plaintext codes concurrently. The hashed
// slice keeps the order of the plaintext slice.
func (s *Service) hashBackupCodes(codes []string) ([]string, error) {
	hashed := make([]string, len(codes))
	errs := make([]error, len(codes))

	var wg sync.WaitGroup
	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			hashed[i], errs[i] = s.hasher.Hash(code)
		}(i, code)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to hash backup code: %w", err)
		}
	}
	return hashed, nil
}

// matchBackupCode scans the hashed pool for the given plaintext code. It
// returns the matched index (-1 when none) and the pool with the matched
// entry removed, preserving stored order.
func (s *Service) matchBackupCode(hashedCodes []string, code string) (int, []string, error) {
	if code == "" {
		return -1, nil, nil
	}

	for i, hashed := range hashedCodes {
		ok, err := s.hasher.Verify(hashed, code)
		if err != nil {
			return -1, nil, fmt.Errorf("failed to verify backup code: %w", err)
		}
		if ok {
			remaining := make([]string, 0, len(hashedCodes)-1)
			remaining = append(remaining, hashedCodes[:i]...)
			remaining = append(remaining, hashedCodes[i+1:]...)
			return i, remaining, nil
		}
	}
	return -1, nil, nil
}

// notifyTwofaChanged sends a best-effort security notification email when a
// second factor is enabled or disabled. Delivery failures are logged, never
// propagated.
func (s *Service) notifyTwofaChanged(ctx context.Context, userID uuid.UUID, method, action string) {
	if s.notificationManager == nil {
		return
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		slog.Warn("Failed to find user for security notification", "userID", userID, "error", err)
		return
	}

	err = s.notificationManager.Send(notification.TwofaChangedNotice, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"Name":   u.Name,
			"Method": method,
			"Action": action,
		},
	})
	if err != nil {
		slog.Warn("Failed to send security notification", "userID", userID, "error", err)
	}
}

// generateSmsCode returns a 6-digit code uniform in [100000, 999999] from a
// cryptographically secure source.
func generateSmsCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate sms code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
