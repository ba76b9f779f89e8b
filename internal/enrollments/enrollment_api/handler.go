package enrollment_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/auth"
	"ms-registration/internal/enrollments"
	"ms-registration/internal/enrollments/pass"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type Handler struct {
	EnrollmentService *enrollments.EnrollmentService
	PassGenerator     *pass.Generator
	Logger            *logger.Logger
}

func NewHandler(enrollmentService *enrollments.EnrollmentService, passGenerator *pass.Generator, log *logger.Logger) *Handler {
	return &Handler{
		EnrollmentService: enrollmentService,
		PassGenerator:     passGenerator,
		Logger:            log,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound), errors.Is(err, models.ErrEnrollmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrScheduleConflict),
		errors.Is(err, models.ErrAlreadyEnrolled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	enrollment, err := h.EnrollmentService.Enroll(r.Context(), identity, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Enroll: user=%s event=%s: %v", identity.UserID, eventID, err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.Logger.LogEnrollment("CREATE", identity.UserID, eventID, "enrollment successful")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(enrollment); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Enroll: failed to encode response: %v", err))
	}
}

func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	enrollment, err := h.EnrollmentService.Unenroll(r.Context(), identity, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Unenroll: user=%s event=%s: %v", identity.UserID, eventID, err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.Logger.LogEnrollment("CANCEL", identity.UserID, eventID, "unenrollment successful")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(enrollment); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Unenroll: failed to encode response: %v", err))
	}
}

func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	enrollmentList, err := h.EnrollmentService.ListOwn(r.Context(), identity)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if enrollmentList == nil {
		enrollmentList = []models.Enrollment{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(enrollmentList); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOwn: failed to encode response: %v", err))
	}
}

// GetPass renders the caller's enrollment as an encrypted QR PNG.
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.CallerIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	enrollmentID := chi.URLParam(r, "enrollmentID")
	enrollment, err := h.EnrollmentService.GetOwn(r.Context(), identity, enrollmentID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	png, err := h.PassGenerator.GeneratePass(*enrollment)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPass: failed to generate pass: %v", err))
		http.Error(w, "failed to generate pass", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPass: failed to write response: %v", err))
	}
}
