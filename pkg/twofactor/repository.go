package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record holds the complete two-factor state for one user. A missing record
// means 2FA was never configured. Empty strings stand for absent values in
// the string fields.
type Record struct {
	UserID           uuid.UUID  `json:"user_id"`
	TotpEnabled      bool       `json:"totp_enabled"`
	TotpVerified     bool       `json:"totp_verified"`
	TotpSecret       string     `json:"totp_secret,omitempty"`
	BackupCodes      []string   `json:"backup_codes,omitempty"`
	SmsEnabled       bool       `json:"sms_enabled"`
	PhoneVerified    bool       `json:"phone_verified"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	SmsCode          string     `json:"sms_code,omitempty"`
	SmsCodeExpiresAt *time.Time `json:"sms_code_expires_at,omitempty"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RecordChanges describes a partial update. Nil pointer fields are left
// untouched. Setting a string pointer to the empty string clears the field.
//
// SmsCode and SmsCodeExpiresAt are written as a pair: they are applied only
// when SmsCode is non-nil, and clearing the code also clears the expiry, so a
// record can never hold one without the other.
//
// BackupCodes replaces the whole pool when non-nil; an empty non-nil slice
// empties it.
type RecordChanges struct {
	TotpEnabled      *bool
	TotpVerified     *bool
	TotpSecret       *string
	BackupCodes      []string
	SmsEnabled       *bool
	PhoneVerified    *bool
	PhoneNumber      *string
	SmsCode          *string
	SmsCodeExpiresAt *time.Time
	LastUsedAt       *time.Time
}

// UpsertParams carries the two branches of an upsert: Create is applied to a
// fresh record when none exists, Update is applied to the existing record
// otherwise.
type UpsertParams struct {
	Create RecordChanges
	Update RecordChanges
}

// Repository defines the storage contract for two-factor records, keyed
// uniquely by user id. Implementations provide last-write-wins semantics;
// callers performing read-modify-write sequences get no isolation between
// concurrent requests for the same user.
type Repository interface {
	// FindByUserID returns the record for a user, or (nil, nil) when the user
	// has no record.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Record, error)

	// Upsert creates a record from the Create branch when none exists, and
	// applies the Update branch otherwise.
	Upsert(ctx context.Context, userID uuid.UUID, params UpsertParams) (*Record, error)

	// Update applies changes to an existing record. Returns ErrRecordNotFound
	// when the user has no record.
	Update(ctx context.Context, userID uuid.UUID, changes RecordChanges) (*Record, error)
}

// apply writes the populated fields of c onto rec.
func (c RecordChanges) apply(rec *Record) {
	if c.TotpEnabled != nil {
		rec.TotpEnabled = *c.TotpEnabled
	}
	if c.TotpVerified != nil {
		rec.TotpVerified = *c.TotpVerified
	}
	if c.TotpSecret != nil {
		rec.TotpSecret = *c.TotpSecret
	}
	if c.BackupCodes != nil {
		rec.BackupCodes = append([]string(nil), c.BackupCodes...)
	}
	if c.SmsEnabled != nil {
		rec.SmsEnabled = *c.SmsEnabled
	}
	if c.PhoneVerified != nil {
		rec.PhoneVerified = *c.PhoneVerified
	}
	if c.PhoneNumber != nil {
		rec.PhoneNumber = *c.PhoneNumber
	}
	if c.SmsCode != nil {
		rec.SmsCode = *c.SmsCode
		if rec.SmsCode == "" {
			rec.SmsCodeExpiresAt = nil
		} else if c.SmsCodeExpiresAt != nil {
			expiresAt := *c.SmsCodeExpiresAt
			rec.SmsCodeExpiresAt = &expiresAt
		}
	}
	if c.LastUsedAt != nil {
		lastUsed := *c.LastUsedAt
		rec.LastUsedAt = &lastUsed
	}
}

// cloneRecord returns a deep copy so callers cannot alias repository state.
func cloneRecord(rec Record) *Record {
	out := rec
	out.BackupCodes = append([]string(nil), rec.BackupCodes...)
	if rec.SmsCodeExpiresAt != nil {
		expiresAt := *rec.SmsCodeExpiresAt
		out.SmsCodeExpiresAt = &expiresAt
	}
	if rec.LastUsedAt != nil {
		lastUsed := *rec.LastUsedAt
		out.LastUsedAt = &lastUsed
	}
	return &out
}
