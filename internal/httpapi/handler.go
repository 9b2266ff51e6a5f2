package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skillfolio/profile-service/internal/apierrors"
	"github.com/skillfolio/profile-service/internal/assessment"
	"github.com/skillfolio/profile-service/internal/logging"
	"github.com/skillfolio/profile-service/internal/platforms"
	"github.com/skillfolio/profile-service/internal/profile"
)

const (
	maxBodyBytes    = 1 << 20
	platformTimeout = 30 * time.Second
	modelTimeout    = 45 * time.Second
)

// Handler exposes the profile, platform, and assessment services over HTTP.
type Handler struct {
	logger      *slog.Logger
	profiles    profile.Service
	assessments assessment.Service
	platforms   platforms.Service
}

// NewHandler creates the HTTP handler.
func NewHandler(logger *slog.Logger, profiles profile.Service, assessments assessment.Service, platformSvc platforms.Service) *Handler {
	return &Handler{logger: logger, profiles: profiles, assessments: assessments, platforms: platformSvc}
}

// RegisterRoutes mounts all routes on the router. Static segments are
// registered alongside the {field} catch-all; chi prefers the static match.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/{profileId}", h.getProfile)
		r.Post("/update/field", h.updateField)
		r.Post("/badges", h.attachBadges)
		r.Post("/skills/tested", h.upsertTestedSkill)
		r.Post("/{field}", h.updateNamedField)
		r.Delete("/{profileId}/testedSkills/{skill}", h.deleteTestedSkill)
		r.Delete("/{profileId}/{field}/{index}", h.deleteSectionItem)
	})

	r.Route("/platforms", func(r chi.Router) {
		r.Post("/codechef", h.syncCodeChef)
		r.Post("/leetcode", h.syncLeetCode)
		r.Post("/github", h.syncGitHub)
		r.Post("/refresh-all", h.refreshAll)
	})

	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", h.createAssessment)
		r.Post("/grade", h.gradeAssessment)
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")

	p, err := h.profiles.GetOrCreate(r.Context(), profileID)
	if err != nil {
		h.writeError(w, r, err, "get profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateFieldRequest struct {
	ProfileID string          `json:"profileId"`
	Field     string          `json:"field"`
	Value     json.RawMessage `json:"value"`
}

func (h *Handler) updateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.profiles.UpdateField(r.Context(), req.ProfileID, req.Field, req.Value)
	if err != nil {
		h.writeError(w, r, err, "update field")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type namedFieldRequest struct {
	ProfileID string          `json:"profileId"`
	Value     json.RawMessage `json:"value"`
}

func (h *Handler) updateNamedField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	var req namedFieldRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.profiles.UpdateField(r.Context(), req.ProfileID, field, req.Value)
	if err != nil {
		h.writeError(w, r, err, "update field")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// attachBadgesRequest carries the badge array under "value"; older clients
// send it under "badges", so both keys decode.
type attachBadgesRequest struct {
	ProfileID string               `json:"profileId"`
	Value     []profile.BadgeInput `json:"value"`
	Badges    []profile.BadgeInput `json:"badges"`
}

func (h *Handler) attachBadges(w http.ResponseWriter, r *http.Request) {
	var req attachBadgesRequest
	if !h.decode(w, r, &req) {
		return
	}

	incoming := req.Value
	if incoming == nil {
		incoming = req.Badges
	}

	p, err := h.profiles.AttachBadges(r.Context(), req.ProfileID, incoming)
	if err != nil {
		h.writeError(w, r, err, "attach badges")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type upsertTestedSkillRequest struct {
	ProfileID   string                   `json:"profileId"`
	TestedSkill profile.TestedSkillInput `json:"testedSkill"`
}

func (h *Handler) upsertTestedSkill(w http.ResponseWriter, r *http.Request) {
	var req upsertTestedSkillRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.profiles.UpsertTestedSkill(r.Context(), req.ProfileID, req.TestedSkill)
	if err != nil {
		h.writeError(w, r, err, "upsert tested skill")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type deleteTestedSkillResponse struct {
	Message string           `json:"message"`
	Profile *profile.Profile `json:"profile"`
}

func (h *Handler) deleteTestedSkill(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")
	skill := chi.URLParam(r, "skill")

	p, err := h.profiles.DeleteTestedSkill(r.Context(), profileID, skill)
	if err != nil {
		h.writeError(w, r, err, "delete tested skill")
		return
	}
	writeJSON(w, http.StatusOK, deleteTestedSkillResponse{
		Message: "Skill removed successfully",
		Profile: p,
	})
}

func (h *Handler) deleteSectionItem(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileId")
	field := chi.URLParam(r, "field")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeStatus(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}

	p, err := h.profiles.DeleteSectionItem(r.Context(), profileID, field, index)
	if err != nil {
		h.writeError(w, r, err, "delete section item")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type platformSyncRequest struct {
	ProfileID string `json:"profileId"`
	Username  string `json:"username"`
}

func (h *Handler) syncCodeChef(w http.ResponseWriter, r *http.Request) {
	h.syncPlatform(w, r, h.platforms.SyncCodeChef)
}

func (h *Handler) syncLeetCode(w http.ResponseWriter, r *http.Request) {
	h.syncPlatform(w, r, h.platforms.SyncLeetCode)
}

func (h *Handler) syncGitHub(w http.ResponseWriter, r *http.Request) {
	h.syncPlatform(w, r, h.platforms.SyncGitHub)
}

func (h *Handler) syncPlatform(w http.ResponseWriter, r *http.Request, sync func(context.Context, string, string) (*platforms.SyncResult, error)) {
	var req platformSyncRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), platformTimeout)
	defer cancel()

	result, err := sync(ctx, req.ProfileID, req.Username)
	if err != nil {
		h.writeError(w, r, err, "sync platform")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type refreshAllRequest struct {
	ProfileID string `json:"profileId"`
}

func (h *Handler) refreshAll(w http.ResponseWriter, r *http.Request) {
	var req refreshAllRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), platformTimeout)
	defer cancel()

	result, err := h.platforms.RefreshAll(ctx, req.ProfileID)
	if err != nil {
		h.writeError(w, r, err, "refresh platforms")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createAssessmentRequest struct {
	Skill string `json:"skill"`
	Level string `json:"level"`
	Count int    `json:"count"`
}

func (h *Handler) createAssessment(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), modelTimeout)
	defer cancel()

	a, err := h.assessments.Generate(ctx, req.Skill, req.Level, req.Count)
	if err != nil {
		h.writeError(w, r, err, "generate assessment")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type gradeAssessmentRequest struct {
	ProfileID  string `json:"profileId"`
	Assessment string `json:"assessment"`
	Answers    []int  `json:"answers"`
}

func (h *Handler) gradeAssessment(w http.ResponseWriter, r *http.Request) {
	var req gradeAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.assessments.Grade(r.Context(), req.ProfileID, req.Assessment, req.Answers)
	if err != nil {
		h.writeError(w, r, err, "grade assessment")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decode reads a JSON body into dst. On failure it writes a 400 and returns
// false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.writeStatus(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger := logging.WithRequestID(r.Context(), h.logger, middleware.GetReqID(r.Context()))
		logger.Error(op+" failed", "error", err, "path", r.URL.Path)
		h.writeStatus(w, r, status, "internal error")
		return
	}
	h.writeStatus(w, r, status, err.Error())
}

func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, apierrors.ErrorResponse{
		Code:      apierrors.CodeForStatus(status),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, profile.ErrSkillNotFound),
		errors.Is(err, assessment.ErrNotFound),
		errors.Is(err, platforms.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, profile.ErrInvalidField),
		errors.Is(err, profile.ErrInvalidInput),
		errors.Is(err, assessment.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
