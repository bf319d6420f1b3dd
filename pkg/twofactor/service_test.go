package twofactor

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/harbor-idm/pkg/hashing"
	"github.com/harborlabs/harbor-idm/pkg/totp"
	"github.com/harborlabs/harbor-idm/pkg/user"
)

// mockSmsSender captures outbound messages and can be told to fail
type mockSmsSender struct {
	sent []sentSms
	fail bool
}

type sentSms struct {
	To      string
	Message string
}

func (m *mockSmsSender) Send(ctx context.Context, phoneNumber, message string) error {
	if m.fail {
		return errors.New("delivery rejected")
	}
	m.sent = append(m.sent, sentSms{To: phoneNumber, Message: message})
	return nil
}

// lastCode extracts the verification code from the most recent message
func (m *mockSmsSender) lastCode(t *testing.T) string {
	require.NotEmpty(t, m.sent)
	msg := m.sent[len(m.sent)-1].Message
	code := strings.TrimPrefix(msg, "Your verification code is: ")
	require.NotEqual(t, msg, code)
	return code
}

// failingUpdateRepo delegates reads and rejects every Update
type failingUpdateRepo struct {
	Repository
}

func (r *failingUpdateRepo) Update(ctx context.Context, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	return nil, errors.New("connection reset by peer")
}

type testEnv struct {
	svc    *Service
	repo   *InMemoryRepository
	users  *user.InMemoryRepository
	sms    *mockSmsSender
	totp   *totp.Generator
	userID uuid.UUID
}

func setupTestService(t *testing.T, opts ...ServiceOption) *testEnv {
	repo := NewInMemoryRepository()
	users := user.NewInMemoryRepository()
	sms := &mockSmsSender{}
	gen := totp.NewGenerator("harbor-idm-test")

	userID := uuid.New()
	users.AddUser(user.User{ID: userID, Email: "alice@example.com", Name: "Alice"})

	svc := NewService(repo, users, gen, hashing.NewBcryptHasher(4), sms, opts...)
	return &testEnv{svc: svc, repo: repo, users: users, sms: sms, totp: gen, userID: userID}
}

// enableTotp runs the full enrollment and returns the plaintext backup codes
func enableTotp(t *testing.T, env *testEnv) (secret string, backupCodes []string) {
	ctx := context.Background()

	setup, err := env.svc.SetupTotp(ctx, env.userID)
	require.NoError(t, err)

	token, err := env.totp.GenerateCode(setup.Secret)
	require.NoError(t, err)

	codes, err := env.svc.VerifyAndEnableTotp(ctx, env.userID, token)
	require.NoError(t, err)

	return setup.Secret, codes
}

// enableSms runs the full SMS enrollment for the given phone number
func enableSms(t *testing.T, env *testEnv, phoneNumber string) {
	ctx := context.Background()

	require.NoError(t, env.svc.SetupSms(ctx, env.userID, phoneNumber))
	require.NoError(t, env.svc.VerifyAndEnableSms(ctx, env.userID, env.sms.lastCode(t)))
}

func TestGetStatus(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	t.Run("NoRecord", func(t *testing.T) {
		status, err := env.svc.GetStatus(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, status.TotpEnabled)
		assert.False(t, status.SmsEnabled)
		assert.False(t, status.PhoneVerified)
		assert.Zero(t, status.BackupCodesCount)
	})

	t.Run("AfterTotpEnrollment", func(t *testing.T) {
		enableTotp(t, env)

		status, err := env.svc.GetStatus(ctx, env.userID)
		require.NoError(t, err)
		assert.True(t, status.TotpEnabled)
		assert.False(t, status.SmsEnabled)
		assert.Equal(t, 10, status.BackupCodesCount)
	})
}

func TestSetupTotp(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := env.svc.SetupTotp(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("ReturnsEnrollmentMaterial", func(t *testing.T) {
		setup, err := env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)
		assert.NotEmpty(t, setup.Secret)
		assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))
	})

	t.Run("RestartOverwritesPendingSecret", func(t *testing.T) {
		first, err := env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)
		second, err := env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)

		// Only the most recent secret verifies
		staleToken, err := env.totp.GenerateCode(first.Secret)
		require.NoError(t, err)
		_, err = env.svc.VerifyAndEnableTotp(ctx, env.userID, staleToken)
		assert.ErrorIs(t, err, ErrInvalidTotpToken)

		freshToken, err := env.totp.GenerateCode(second.Secret)
		require.NoError(t, err)
		_, err = env.svc.VerifyAndEnableTotp(ctx, env.userID, freshToken)
		assert.NoError(t, err)
	})
}

func TestVerifyAndEnableTotp(t *testing.T) {
	ctx := context.Background()

	t.Run("NotSetUp", func(t *testing.T) {
		env := setupTestService(t)
		_, err := env.svc.VerifyAndEnableTotp(ctx, env.userID, "123456")
		assert.ErrorIs(t, err, ErrTotpNotSetUp)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		env := setupTestService(t)
		_, err := env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)

		_, err = env.svc.VerifyAndEnableTotp(ctx, env.userID, "000000")
		assert.ErrorIs(t, err, ErrInvalidTotpToken)
	})

	t.Run("ReturnsBackupCodesOnce", func(t *testing.T) {
		env := setupTestService(t)
		_, codes := enableTotp(t, env)

		assert.Len(t, codes, 10)
		pattern := regexp.MustCompile(`^[A-F0-9]{8}$`)
		seen := make(map[string]bool)
		for _, code := range codes {
			assert.Regexp(t, pattern, code)
			assert.False(t, seen[code], "backup codes must be distinct")
			seen[code] = true
		}

		// Stored hashed, never plaintext
		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.True(t, rec.TotpEnabled)
		assert.True(t, rec.TotpVerified)
		for _, stored := range rec.BackupCodes {
			assert.NotContains(t, codes, stored)
		}
	})
}

func TestDisableTotp(t *testing.T) {
	ctx := context.Background()

	t.Run("NotEnabled", func(t *testing.T) {
		env := setupTestService(t)
		err := env.svc.DisableTotp(ctx, env.userID, "123456")
		assert.ErrorIs(t, err, ErrTotpNotEnabled)
	})

	t.Run("WithTotpToken", func(t *testing.T) {
		env := setupTestService(t)
		secret, _ := enableTotp(t, env)

		token, err := env.totp.GenerateCode(secret)
		require.NoError(t, err)
		require.NoError(t, env.svc.DisableTotp(ctx, env.userID, token))

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, rec.TotpEnabled)
		assert.False(t, rec.TotpVerified)
		assert.Empty(t, rec.TotpSecret)
		assert.Empty(t, rec.BackupCodes)
	})

	t.Run("WithBackupCode", func(t *testing.T) {
		env := setupTestService(t)
		_, codes := enableTotp(t, env)

		require.NoError(t, env.svc.DisableTotp(ctx, env.userID, codes[0]))

		status, err := env.svc.GetStatus(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, status.TotpEnabled)
		assert.Zero(t, status.BackupCodesCount)
	})

	t.Run("InvalidCode", func(t *testing.T) {
		env := setupTestService(t)
		enableTotp(t, env)

		assert.ErrorIs(t, env.svc.DisableTotp(ctx, env.userID, "000000"), ErrInvalidCode)
		assert.ErrorIs(t, env.svc.DisableTotp(ctx, env.userID, "ZZZZZZZZ"), ErrInvalidCode)
		assert.ErrorIs(t, env.svc.DisableTotp(ctx, env.userID, "short"), ErrInvalidCode)
	})
}

func TestSetupSms(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsCodeAndStoresPending", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))

		require.Len(t, env.sms.sent, 1)
		assert.Equal(t, "+15551234567", env.sms.sent[0].To)
		assert.Regexp(t, `^Your verification code is: [1-9]\d{5}$`, env.sms.sent[0].Message)

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.Equal(t, env.sms.lastCode(t), rec.SmsCode)
		assert.False(t, rec.SmsEnabled)
		assert.False(t, rec.PhoneVerified)
		require.NotNil(t, rec.SmsCodeExpiresAt)
		assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), *rec.SmsCodeExpiresAt, time.Minute)
	})

	t.Run("SendFailureLeavesNoState", func(t *testing.T) {
		env := setupTestService(t)
		env.sms.fail = true

		err := env.svc.SetupSms(ctx, env.userID, "+15551234567")
		assert.ErrorIs(t, err, ErrSmsSendFailed)

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("RerunKeepsEnabledFlags", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")

		// Setting up again against the enabled record must not disable it
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15559876543"))

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.True(t, rec.SmsEnabled)
		assert.True(t, rec.PhoneVerified)
		assert.Equal(t, "+15559876543", rec.PhoneNumber)
	})
}

func TestVerifyAndEnableSms(t *testing.T) {
	ctx := context.Background()

	t.Run("NotSetUp", func(t *testing.T) {
		env := setupTestService(t)
		assert.ErrorIs(t, env.svc.VerifyAndEnableSms(ctx, env.userID, "123456"), ErrSmsNotSetUp)
	})

	t.Run("Expired", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))
		code := env.sms.lastCode(t)

		// Age the pending code past its expiry
		expired := time.Now().UTC().Add(-time.Minute)
		_, err := env.repo.Update(ctx, env.userID, RecordChanges{
			SmsCode:          strPtr(code),
			SmsCodeExpiresAt: &expired,
		})
		require.NoError(t, err)

		assert.ErrorIs(t, env.svc.VerifyAndEnableSms(ctx, env.userID, code), ErrSmsCodeExpired)
	})

	t.Run("Mismatch", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))

		assert.ErrorIs(t, env.svc.VerifyAndEnableSms(ctx, env.userID, "000000"), ErrInvalidSmsCode)
	})

	t.Run("EnablesAndClearsCode", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))
		require.NoError(t, env.svc.VerifyAndEnableSms(ctx, env.userID, env.sms.lastCode(t)))

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.True(t, rec.SmsEnabled)
		assert.True(t, rec.PhoneVerified)
		assert.Empty(t, rec.SmsCode)
		assert.Nil(t, rec.SmsCodeExpiresAt)
	})
}

func TestDisableSms(t *testing.T) {
	ctx := context.Background()

	t.Run("NotEnabled", func(t *testing.T) {
		env := setupTestService(t)
		assert.ErrorIs(t, env.svc.DisableSms(ctx, env.userID, "123456"), ErrSmsNotEnabled)
	})

	t.Run("TwoStepChallenge", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")

		// No pending code: the first call issues a challenge and fails
		err := env.svc.DisableSms(ctx, env.userID, "000000")
		assert.ErrorIs(t, err, ErrVerificationCodeSent)

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.SmsCode)

		// Second call with the challenge code completes the disable
		require.NoError(t, env.svc.DisableSms(ctx, env.userID, env.sms.lastCode(t)))

		rec, err = env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, rec.SmsEnabled)
		assert.False(t, rec.PhoneVerified)
		assert.Empty(t, rec.PhoneNumber)
		assert.Empty(t, rec.SmsCode)
		assert.Nil(t, rec.SmsCodeExpiresAt)
	})

	t.Run("PendingCodeMismatch", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")

		require.ErrorIs(t, env.svc.DisableSms(ctx, env.userID, ""), ErrVerificationCodeSent)
		assert.ErrorIs(t, env.svc.DisableSms(ctx, env.userID, "000000"), ErrInvalidSmsCode)
	})
}

func TestResendSmsCode(t *testing.T) {
	ctx := context.Background()

	t.Run("NoPhone", func(t *testing.T) {
		env := setupTestService(t)
		assert.ErrorIs(t, env.svc.ResendSmsCode(ctx, env.userID), ErrPhoneNotSetUp)
	})

	t.Run("SupersedesPendingCode", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))
		first := env.sms.lastCode(t)

		require.NoError(t, env.svc.ResendSmsCode(ctx, env.userID))
		second := env.sms.lastCode(t)

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.Equal(t, second, rec.SmsCode)

		if first != second {
			assert.ErrorIs(t, env.svc.VerifyAndEnableSms(ctx, env.userID, first), ErrInvalidSmsCode)
		}
	})

	t.Run("StorageFailureIsNotDeliveryFailure", func(t *testing.T) {
		env := setupTestService(t)
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))

		env.svc.repo = &failingUpdateRepo{Repository: env.repo}

		err := env.svc.ResendSmsCode(ctx, env.userID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSmsSendFailed)
		assert.Contains(t, err.Error(), "failed to store sms code")
	})
}

func TestVerifyBackupCode(t *testing.T) {
	ctx := context.Background()

	t.Run("NoCodes", func(t *testing.T) {
		env := setupTestService(t)
		_, err := env.svc.VerifyBackupCode(ctx, env.userID, "AAAAAAAA")
		assert.ErrorIs(t, err, ErrNoBackupCodes)
	})

	t.Run("ReportsPreRemovalCount", func(t *testing.T) {
		env := setupTestService(t)
		_, codes := enableTotp(t, env)

		result, err := env.svc.VerifyBackupCode(ctx, env.userID, codes[3])
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, 10, result.RemainingCodes)

		status, err := env.svc.GetStatus(ctx, env.userID)
		require.NoError(t, err)
		assert.Equal(t, 9, status.BackupCodesCount)
	})

	t.Run("SingleUse", func(t *testing.T) {
		env := setupTestService(t)
		_, codes := enableTotp(t, env)

		_, err := env.svc.VerifyBackupCode(ctx, env.userID, codes[0])
		require.NoError(t, err)

		_, err = env.svc.VerifyBackupCode(ctx, env.userID, codes[0])
		assert.ErrorIs(t, err, ErrInvalidBackupCode)
	})

	t.Run("NoMatch", func(t *testing.T) {
		env := setupTestService(t)
		enableTotp(t, env)

		_, err := env.svc.VerifyBackupCode(ctx, env.userID, "00000000")
		assert.ErrorIs(t, err, ErrInvalidBackupCode)
	})
}

func TestRegenerateBackupCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresActiveTotp", func(t *testing.T) {
		env := setupTestService(t)
		_, err := env.svc.RegenerateBackupCodes(ctx, env.userID, "123456")
		assert.ErrorIs(t, err, ErrTotpNotEnabled)

		// Pending enrollment is not enough
		_, err = env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)
		_, err = env.svc.RegenerateBackupCodes(ctx, env.userID, "123456")
		assert.ErrorIs(t, err, ErrTotpNotEnabled)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		env := setupTestService(t)
		enableTotp(t, env)

		_, err := env.svc.RegenerateBackupCodes(ctx, env.userID, "000000")
		assert.ErrorIs(t, err, ErrInvalidTotpToken)
	})

	t.Run("ReplacesPoolWholesale", func(t *testing.T) {
		env := setupTestService(t)
		secret, oldCodes := enableTotp(t, env)

		token, err := env.totp.GenerateCode(secret)
		require.NoError(t, err)
		newCodes, err := env.svc.RegenerateBackupCodes(ctx, env.userID, token)
		require.NoError(t, err)
		assert.Len(t, newCodes, 10)

		for _, old := range oldCodes {
			assert.NotContains(t, newCodes, old)
		}

		// Old codes no longer verify
		_, err = env.svc.VerifyBackupCode(ctx, env.userID, oldCodes[0])
		assert.ErrorIs(t, err, ErrInvalidBackupCode)

		result, err := env.svc.VerifyBackupCode(ctx, env.userID, newCodes[0])
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})
}

func TestVerify2FA(t *testing.T) {
	ctx := context.Background()

	t.Run("UnconfiguredUserNeverErrors", func(t *testing.T) {
		env := setupTestService(t)

		for _, method := range []Method{MethodTotp, MethodSms, MethodBackup} {
			ok, err := env.svc.Verify2FA(ctx, uuid.New(), "123456", method)
			assert.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("Totp", func(t *testing.T) {
		env := setupTestService(t)
		secret, _ := enableTotp(t, env)

		token, err := env.totp.GenerateCode(secret)
		require.NoError(t, err)

		ok, err := env.svc.Verify2FA(ctx, env.userID, token, MethodTotp)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = env.svc.Verify2FA(ctx, env.userID, "000000", MethodTotp)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SmsConsumesCodeAndStampsLastUsed", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")
		require.NoError(t, env.svc.Send2FACode(ctx, env.userID))
		code := env.sms.lastCode(t)

		ok, err := env.svc.Verify2FA(ctx, env.userID, code, MethodSms)
		require.NoError(t, err)
		assert.True(t, ok)

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.Empty(t, rec.SmsCode)
		assert.Nil(t, rec.SmsCodeExpiresAt)
		assert.NotNil(t, rec.LastUsedAt)

		// The code is gone; replaying it fails
		ok, err = env.svc.Verify2FA(ctx, env.userID, code, MethodSms)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SmsExpiredReportsFalse", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")
		require.NoError(t, env.svc.Send2FACode(ctx, env.userID))
		code := env.sms.lastCode(t)

		expired := time.Now().UTC().Add(-time.Minute)
		_, err := env.repo.Update(ctx, env.userID, RecordChanges{
			SmsCode:          strPtr(code),
			SmsCodeExpiresAt: &expired,
		})
		require.NoError(t, err)

		ok, err := env.svc.Verify2FA(ctx, env.userID, code, MethodSms)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("BackupConsumesOnMatch", func(t *testing.T) {
		env := setupTestService(t)
		_, codes := enableTotp(t, env)

		ok, err := env.svc.Verify2FA(ctx, env.userID, codes[0], MethodBackup)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = env.svc.Verify2FA(ctx, env.userID, codes[0], MethodBackup)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		env := setupTestService(t)
		enableTotp(t, env)

		ok, err := env.svc.Verify2FA(ctx, env.userID, "123456", Method("email"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestHas2FAEnabled(t *testing.T) {
	ctx := context.Background()

	t.Run("NoRecord", func(t *testing.T) {
		env := setupTestService(t)
		enabled, err := env.svc.Has2FAEnabled(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("PendingEnrollmentDoesNotCount", func(t *testing.T) {
		env := setupTestService(t)
		_, err := env.svc.SetupTotp(ctx, env.userID)
		require.NoError(t, err)

		enabled, err := env.svc.Has2FAEnabled(ctx, env.userID)
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("EitherMethodCounts", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")

		enabled, err := env.svc.Has2FAEnabled(ctx, env.userID)
		require.NoError(t, err)
		assert.True(t, enabled)
	})
}

func TestSend2FACode(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresActiveSms", func(t *testing.T) {
		env := setupTestService(t)
		assert.ErrorIs(t, env.svc.Send2FACode(ctx, env.userID), ErrSms2faNotEnabled)

		// A pending, unverified SMS setup is not enough
		require.NoError(t, env.svc.SetupSms(ctx, env.userID, "+15551234567"))
		assert.ErrorIs(t, env.svc.Send2FACode(ctx, env.userID), ErrSms2faNotEnabled)
	})

	t.Run("IssuesFreshCode", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")

		require.NoError(t, env.svc.Send2FACode(ctx, env.userID))

		rec, err := env.repo.FindByUserID(ctx, env.userID)
		require.NoError(t, err)
		assert.Equal(t, env.sms.lastCode(t), rec.SmsCode)
		require.NotNil(t, rec.SmsCodeExpiresAt)
		assert.True(t, rec.SmsCodeExpiresAt.After(time.Now().UTC()))
	})

	t.Run("SendFailure", func(t *testing.T) {
		env := setupTestService(t)
		enableSms(t, env, "+15551234567")
		env.sms.fail = true

		assert.ErrorIs(t, env.svc.Send2FACode(ctx, env.userID), ErrSmsSendFailed)
	})
}

func TestGenerateSmsCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[1-9]\d{5}$`)
	for i := 0; i < 100; i++ {
		code, err := generateSmsCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}
