package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/harborlabs/harbor-idm/pkg/twofactor"
)

// Handler exposes the two-factor service over HTTP
type Handler struct {
	service twofactor.TwoFactorService
}

// NewHandler creates a new two-factor API handler
func NewHandler(service twofactor.TwoFactorService) *Handler {
	return &Handler{
		service: service,
	}
}

// Routes returns an http.Handler with all two-factor endpoints mounted.
// Callers are expected to wrap it with JWT verification middleware.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/status", h.GetStatus)
	r.Post("/totp/setup", h.SetupTotp)
	r.Post("/totp/verify", h.VerifyTotp)
	r.Post("/totp/disable", h.DisableTotp)
	r.Post("/sms/setup", h.SetupSms)
	r.Post("/sms/verify", h.VerifySms)
	r.Post("/sms/disable", h.DisableSms)
	r.Post("/sms/resend", h.ResendSmsCode)
	r.Post("/backup-codes/verify", h.VerifyBackupCode)
	r.Post("/backup-codes/regenerate", h.RegenerateBackupCodes)
	r.Post("/verify", h.Verify2FA)
	r.Post("/send-code", h.Send2FACode)

	return r
}

// GetStatus handles GET /status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	status, err := h.service.GetStatus(r.Context(), userID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	var response StatusResponse
	copier.Copy(&response, status)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// SetupTotp handles POST /totp/setup
func (h *Handler) SetupTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	setup, err := h.service.SetupTotp(r.Context(), userID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SetupTotpResponse{Secret: setup.Secret, QrCode: setup.QRCode})
}

// VerifyTotp handles POST /totp/verify
func (h *Handler) VerifyTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req VerifyTotpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Token == "" {
		renderBadRequest(w, r, "Token is required")
		return
	}

	codes, err := h.service.VerifyAndEnableTotp(r.Context(), userID, req.Token)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, BackupCodesResponse{BackupCodes: codes})
}

// DisableTotp handles POST /totp/disable
func (h *Handler) DisableTotp(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req DisableTotpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Code == "" {
		renderBadRequest(w, r, "Code is required")
		return
	}

	if err := h.service.DisableTotp(r.Context(), userID, req.Code); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "TOTP disabled successfully"})
}

// SetupSms handles POST /sms/setup
func (h *Handler) SetupSms(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req SetupSmsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.PhoneNumber == "" {
		renderBadRequest(w, r, "Phone number is required")
		return
	}

	if err := h.service.SetupSms(r.Context(), userID, req.PhoneNumber); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Verification code sent"})
}

// VerifySms handles POST /sms/verify
func (h *Handler) VerifySms(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req VerifySmsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Code == "" {
		renderBadRequest(w, r, "Code is required")
		return
	}

	if err := h.service.VerifyAndEnableSms(r.Context(), userID, req.Code); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "SMS 2FA enabled successfully"})
}

// DisableSms handles POST /sms/disable. When no challenge code is pending the
// service sends one and the handler answers 202; the caller repeats the
// request with the received code.
func (h *Handler) DisableSms(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req DisableSmsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}

	err = h.service.DisableSms(r.Context(), userID, req.Code)
	if errors.Is(err, twofactor.ErrVerificationCodeSent) {
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, MessageResponse{Message: "Verification code sent, please provide the code to disable SMS"})
		return
	}
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "SMS 2FA disabled successfully"})
}

// ResendSmsCode handles POST /sms/resend
func (h *Handler) ResendSmsCode(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	if err := h.service.ResendSmsCode(r.Context(), userID); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Verification code sent"})
}

// VerifyBackupCode handles POST /backup-codes/verify
func (h *Handler) VerifyBackupCode(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req VerifyBackupCodeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Code == "" {
		renderBadRequest(w, r, "Code is required")
		return
	}

	result, err := h.service.VerifyBackupCode(r.Context(), userID, req.Code)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyBackupCodeResponse{Valid: result.Valid, RemainingCodes: result.RemainingCodes})
}

// RegenerateBackupCodes handles POST /backup-codes/regenerate
func (h *Handler) RegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req RegenerateBackupCodesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Token == "" {
		renderBadRequest(w, r, "Token is required")
		return
	}

	codes, err := h.service.RegenerateBackupCodes(r.Context(), userID, req.Token)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, BackupCodesResponse{BackupCodes: codes})
}

// Verify2FA handles POST /verify
func (h *Handler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	var req Verify2FARequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderBadRequest(w, r, "Invalid request body")
		return
	}
	if req.Method == "" {
		renderBadRequest(w, r, "Method is required")
		return
	}

	valid, err := h.service.Verify2FA(r.Context(), userID, req.Code, twofactor.Method(req.Method))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Verify2FAResponse{Valid: valid})
}

// Send2FACode handles POST /send-code
func (h *Handler) Send2FACode(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		renderUnauthorized(w, r, err)
		return
	}

	if err := h.service.Send2FACode(r.Context(), userID); err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Verification code sent"})
}

// renderServiceError maps service errors onto HTTP statuses: credential
// failures to 401, business-rule violations to 400, delivery failures to 502
// and everything else to 500.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, twofactor.ErrInvalidTotpToken),
		errors.Is(err, twofactor.ErrInvalidSmsCode),
		errors.Is(err, twofactor.ErrInvalidBackupCode),
		errors.Is(err, twofactor.ErrInvalidCode):
		status = http.StatusUnauthorized
	case errors.Is(err, twofactor.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, twofactor.ErrTotpNotSetUp),
		errors.Is(err, twofactor.ErrTotpNotEnabled),
		errors.Is(err, twofactor.ErrSmsNotSetUp),
		errors.Is(err, twofactor.ErrSmsNotEnabled),
		errors.Is(err, twofactor.ErrSms2faNotEnabled),
		errors.Is(err, twofactor.ErrSmsCodeExpired),
		errors.Is(err, twofactor.ErrPhoneNotFound),
		errors.Is(err, twofactor.ErrPhoneNotSetUp),
		errors.Is(err, twofactor.ErrNoBackupCodes):
		status = http.StatusBadRequest
	case errors.Is(err, twofactor.ErrSmsSendFailed):
		status = http.StatusBadGateway
	default:
		slog.Error("Unexpected two-factor service error", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An internal error occurred"})
		return
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Failed to get user ID from context", "error", err)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
}

// getUserIDFromContext extracts the user ID from the JWT claims put into the
// request context by the jwtauth middleware
func getUserIDFromContext(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, err
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok || userIDStr == "" {
		return uuid.Nil, errors.New("user_id not found in JWT claims")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid user_id in JWT claims")
	}

	return userID, nil
}
