package totp

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultPeriod is the standard TOTP time step in seconds.
	DefaultPeriod = 30
	// DefaultSkew allows one step of clock drift before and after the current step.
	DefaultSkew = 1
	// DefaultQRSize is the pixel width and height of generated QR codes.
	DefaultQRSize = 300
	// BackupCodeBytes is the number of random bytes behind each backup code;
	// hex-encoded this yields 8 characters.
	BackupCodeBytes = 4
)

// Generator creates and verifies time-based one-time passwords and produces
// enrollment material (otpauth URIs, QR codes, backup codes) for a fixed issuer.
type Generator struct {
	issuer string
	period uint
	skew   uint
	digits otp.Digits
	qrSize int
}

// Option configures a Generator.
type Option func(*Generator)

// WithPeriod sets the TOTP time step in seconds.
func WithPeriod(period uint) Option {
	return func(g *Generator) {
		g.period = period
	}
}

// WithSkew sets the number of time steps tolerated before and after the current one.
func WithSkew(skew uint) Option {
	return func(g *Generator) {
		g.skew = skew
	}
}

// WithQRSize sets the width and height of generated QR code images in pixels.
func WithQRSize(size int) Option {
	return func(g *Generator) {
		g.qrSize = size
	}
}

// NewGenerator creates a Generator for the given issuer name. The issuer is
// embedded into enrollment URIs and shows up in authenticator apps.
func NewGenerator(issuer string, opts ...Option) *Generator {
	g := &Generator{
		issuer: issuer,
		period: DefaultPeriod,
		skew:   DefaultSkew,
		digits: otp.DigitsSix,
		qrSize: DefaultQRSize,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GenerateSecret produces a fresh random shared secret and the otpauth
// provisioning URI embedding the issuer, the account label and the secret.
func (g *Generator) GenerateSecret(accountName string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.issuer,
		AccountName: accountName,
		Period:      g.period,
		Digits:      g.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "issuer", g.issuer, "error", err)
		return "", "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// GenerateQRCode renders an otpauth URI as a PNG image and returns it as a
// base64 data URI suitable for direct embedding in an <img> tag.
func (g *Generator) GenerateQRCode(uri string) (string, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("invalid otpauth url: %w", err)
	}

	img, err := key.Image(g.qrSize, g.qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// VerifyToken validates a caller-supplied code against the shared secret.
// Malformed tokens and library failures report false rather than an error so
// callers cannot distinguish bad input from an internal fault.
func (g *Generator) VerifyToken(secret, token string) bool {
	return g.verifyTokenAt(secret, token, time.Now().UTC())
}

func (g *Generator) verifyTokenAt(secret, token string, at time.Time) bool {
	valid, err := totp.ValidateCustom(token, secret, at, totp.ValidateOpts{
		Period:    g.period,
		Skew:      g.skew,
		Digits:    g.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Warn("Failed to validate totp token", "error", err)
		return false
	}
	return valid
}

// GenerateCode returns the code currently valid for the secret. Used by login
// flows that deliver TOTP-derived codes out of band, and by tests.
func (g *Generator) GenerateCode(secret string) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    g.period,
		Skew:      g.skew,
		Digits:    g.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate totp code: %w", err)
	}
	return code, nil
}

// GenerateBackupCodes produces count single-use recovery codes, each 8
// uppercase hexadecimal characters from a cryptographically secure source.
func (g *Generator) GenerateBackupCodes(count int) ([]string, error) {
	codes := make([]string, count)
	for i := range codes {
		b := make([]byte, BackupCodeBytes)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = strings.ToUpper(hex.EncodeToString(b))
	}
	return codes, nil
}
