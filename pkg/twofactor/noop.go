package twofactor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NoOpTwoFactorService is a no-op implementation of TwoFactorService.
// This allows services that depend on TwoFactorService to work without
// actual 2FA functionality when 2FA is not needed/configured.
//
// Read-only queries report everything off; mutating operations return errors
// indicating 2FA is not configured.
type NoOpTwoFactorService struct{}

// NewNoOpTwoFactorService creates a new no-op two-factor service.
// Use this when you don't need 2FA functionality.
func NewNoOpTwoFactorService() TwoFactorService {
	return &NoOpTwoFactorService{}
}

func (n *NoOpTwoFactorService) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	return &Status{}, nil // Everything off, not an error
}

func (n *NoOpTwoFactorService) SetupTotp(ctx context.Context, userID uuid.UUID) (*TotpSetup, error) {
	return nil, fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) VerifyAndEnableTotp(ctx context.Context, userID uuid.UUID, token string) ([]string, error) {
	return nil, fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) DisableTotp(ctx context.Context, userID uuid.UUID, code string) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) SetupSms(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) VerifyAndEnableSms(ctx context.Context, userID uuid.UUID, code string) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) DisableSms(ctx context.Context, userID uuid.UUID, code string) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) ResendSmsCode(ctx context.Context, userID uuid.UUID) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) VerifyBackupCode(ctx context.Context, userID uuid.UUID, code string) (*BackupCodeResult, error) {
	return nil, fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, totpToken string) ([]string, error) {
	return nil, fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) Verify2FA(ctx context.Context, userID uuid.UUID, code string, method Method) (bool, error) {
	return false, nil // No 2FA configured, verification trivially fails
}

func (n *NoOpTwoFactorService) Has2FAEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	return false, nil
}

func (n *NoOpTwoFactorService) Send2FACode(ctx context.Context, userID uuid.UUID) error {
	return fmt.Errorf("two-factor authentication not configured")
}
