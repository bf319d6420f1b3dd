package twofactor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based two-factor repository
func NewPostgresRepository(db *pgxpool.Pool) (*PostgresRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &PostgresRepository{db: db}, nil
}

const recordColumns = `
	user_id, totp_enabled, totp_verified, COALESCE(totp_secret, ''),
	COALESCE(backup_codes, '{}'), sms_enabled, phone_verified,
	COALESCE(phone_number, ''), COALESCE(sms_code, ''), sms_code_expires_at,
	last_used_at, created_at, updated_at
`

// FindByUserID returns the record for a user, or (nil, nil) when absent
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM two_factor_auth WHERE user_id = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	}
	return rec, nil
}

// Upsert creates a record from the Create branch when none exists, applies
// the Update branch otherwise. The read and write run in one transaction so
// the branch decision cannot race a concurrent insert for the same user.
func (r *PostgresRepository) Upsert(ctx context.Context, userID uuid.UUID, params UpsertParams) (*Record, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + recordColumns + ` FROM two_factor_auth WHERE user_id = $1 FOR UPDATE`
	_, err = scanRecord(tx.QueryRow(ctx, query, userID))

	var rec *Record
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		rec, err = insertRecord(ctx, tx, userID, params.Create)
	case err != nil:
		return nil, fmt.Errorf("failed to get two-factor record: %w", err)
	default:
		rec, err = updateRecord(ctx, tx, userID, params.Update)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec, nil
}

// Update applies changes to an existing record
func (r *PostgresRepository) Update(ctx context.Context, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	return updateRecord(ctx, r.db, userID, changes)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertRecord(ctx context.Context, q rowQuerier, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	var rec Record
	rec.UserID = userID
	changes.apply(&rec)

	query := `
		INSERT INTO two_factor_auth (
			user_id, totp_enabled, totp_verified, totp_secret, backup_codes,
			sms_enabled, phone_verified, phone_number, sms_code, sms_code_expires_at,
			last_used_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, NOW(), NOW())
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.UserID,
		rec.TotpEnabled,
		rec.TotpVerified,
		rec.TotpSecret,
		rec.BackupCodes,
		rec.SmsEnabled,
		rec.PhoneVerified,
		rec.PhoneNumber,
		rec.SmsCode,
		rec.SmsCodeExpiresAt,
		rec.LastUsedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create two-factor record: %w", err)
	}
	return created, nil
}

func updateRecord(ctx context.Context, q rowQuerier, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{userID}

	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.TotpEnabled != nil {
		addSet("totp_enabled", *changes.TotpEnabled)
	}
	if changes.TotpVerified != nil {
		addSet("totp_verified", *changes.TotpVerified)
	}
	if changes.TotpSecret != nil {
		if *changes.TotpSecret == "" {
			setClauses = append(setClauses, "totp_secret = NULL")
		} else {
			addSet("totp_secret", *changes.TotpSecret)
		}
	}
	if changes.BackupCodes != nil {
		addSet("backup_codes", changes.BackupCodes)
	}
	if changes.SmsEnabled != nil {
		addSet("sms_enabled", *changes.SmsEnabled)
	}
	if changes.PhoneVerified != nil {
		addSet("phone_verified", *changes.PhoneVerified)
	}
	if changes.PhoneNumber != nil {
		if *changes.PhoneNumber == "" {
			setClauses = append(setClauses, "phone_number = NULL")
		} else {
			addSet("phone_number", *changes.PhoneNumber)
		}
	}
	if changes.SmsCode != nil {
		if *changes.SmsCode == "" {
			setClauses = append(setClauses, "sms_code = NULL", "sms_code_expires_at = NULL")
		} else {
			addSet("sms_code", *changes.SmsCode)
			if changes.SmsCodeExpiresAt != nil {
				addSet("sms_code_expires_at", *changes.SmsCodeExpiresAt)
			}
		}
	}
	if changes.LastUsedAt != nil {
		addSet("last_used_at", *changes.LastUsedAt)
	}

	query := `
		UPDATE two_factor_auth
		SET ` + strings.Join(setClauses, ", ") + `
		WHERE user_id = $1
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update two-factor record: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.UserID,
		&rec.TotpEnabled,
		&rec.TotpVerified,
		&rec.TotpSecret,
		&rec.BackupCodes,
		&rec.SmsEnabled,
		&rec.PhoneVerified,
		&rec.PhoneNumber,
		&rec.SmsCode,
		&rec.SmsCodeExpiresAt,
		&rec.LastUsedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
