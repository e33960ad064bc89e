package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"khidma/backend/internal/domain"
	"khidma/backend/internal/service/availability"
	"khidma/backend/internal/store"
)

type availabilityService interface {
	GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, now time.Time) ([]domain.Slot, error)
	IsSlotStillAvailable(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate, start domain.TimeOfDay, now time.Time) (bool, error)
	GetProviderSchedule(ctx context.Context, providerID uuid.UUID) (store.ProviderSchedule, error)
	PutWeeklySchedule(ctx context.Context, providerID uuid.UUID, days []domain.DaySchedule) ([]domain.DaySchedule, error)
	PutException(ctx context.Context, ex domain.ScheduleException) (domain.ScheduleException, error)
	DeleteException(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) error
	PutSettings(ctx context.Context, settings domain.AvailabilitySettings) (domain.AvailabilitySettings, error)
}

type Server struct {
	svc availabilityService
	log *slog.Logger
	now func() time.Time
}

func NewServer(svc availabilityService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc: svc,
		log: log.With(slog.String("component", "rest.availability")),
		now: time.Now,
	}
}

type availabilityResponse struct {
	ProviderID uuid.UUID           `json:"provider_id"`
	Date       domain.CalendarDate `json:"date"`
	Slots      []domain.Slot       `json:"slots"`
}

// GET /v1/providers/{providerID}/availability?date=YYYY-MM-DD
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "GetAvailability"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}
	date, ok := s.queryDate(w, r, log, "date")
	if !ok {
		return
	}

	slots, err := s.svc.GetAvailableSlots(r.Context(), providerID, date, s.now())
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	log.Debug(
		"availability listed",
		slog.String("provider_id", providerID.String()),
		slog.String("date", date.String()),
		slog.Int("count", len(slots)),
	)
	writeJSON(w, http.StatusOK, availabilityResponse{ProviderID: providerID, Date: date, Slots: slots})
}

// GET /v1/providers/{providerID}/availability/check?date=...&start_time=...
func (s *Server) CheckSlot(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "CheckSlot"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}
	date, ok := s.queryDate(w, r, log, "date")
	if !ok {
		return
	}

	start, err := domain.ParseTimeOfDay(r.URL.Query().Get("start_time"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_start_time"), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusBadRequest, "start_time must be HH:MM or h:mm AM/PM")
		return
	}

	available, err := s.svc.IsSlotStillAvailable(r.Context(), providerID, date, start, s.now())
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

type scheduleResponse struct {
	Days       []domain.DaySchedule       `json:"days"`
	Exceptions []domain.ScheduleException `json:"exceptions"`
	Settings   domain.AvailabilitySettings `json:"settings"`
}

// GET /v1/providers/{providerID}/schedule
func (s *Server) GetSchedule(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "GetSchedule"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}

	sched, err := s.svc.GetProviderSchedule(r.Context(), providerID)
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		Days:       sched.Weekly.Days,
		Exceptions: sched.Exceptions,
		Settings:   sched.Settings,
	})
}

type putSchedulePayload struct {
	Days []domain.DaySchedule `json:"days"`
}

// PUT /v1/providers/{providerID}/schedule
func (s *Server) PutSchedule(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "PutSchedule"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}

	var payload putSchedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	days, err := s.svc.PutWeeklySchedule(r.Context(), providerID, payload.Days)
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	log.Info("weekly schedule replaced", slog.String("provider_id", providerID.String()), slog.Int("days", len(days)))
	writeJSON(w, http.StatusOK, putSchedulePayload{Days: days})
}

// PUT /v1/providers/{providerID}/schedule/exceptions
func (s *Server) PutException(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "PutException"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}

	var ex domain.ScheduleException
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ex.ProviderID = providerID

	out, err := s.svc.PutException(r.Context(), ex)
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	log.Info("schedule exception saved", slog.String("provider_id", providerID.String()), slog.String("date", out.Date.String()))
	writeJSON(w, http.StatusOK, out)
}

// DELETE /v1/providers/{providerID}/schedule/exceptions?date=...
func (s *Server) DeleteException(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "DeleteException"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}
	date, ok := s.queryDate(w, r, log, "date")
	if !ok {
		return
	}

	if err := s.svc.DeleteException(r.Context(), providerID, date); err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	log.Info("schedule exception removed", slog.String("provider_id", providerID.String()), slog.String("date", date.String()))
	w.WriteHeader(http.StatusNoContent)
}

// PUT /v1/providers/{providerID}/schedule/settings
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "PutSettings"))

	providerID, ok := s.providerID(w, r, log)
	if !ok {
		return
	}

	var settings domain.AvailabilitySettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	settings.ProviderID = providerID

	out, err := s.svc.PutSettings(r.Context(), settings)
	if err != nil {
		s.writeServiceError(w, log, err, providerID)
		return
	}

	log.Info("availability settings saved", slog.String("provider_id", providerID.String()))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) providerID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_provider_id"))
		writeError(w, http.StatusBadRequest, "provider id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) queryDate(w http.ResponseWriter, r *http.Request, log *slog.Logger, param string) (domain.CalendarDate, bool) {
	raw := r.URL.Query().Get(param)
	date, err := domain.ParseCalendarDate(raw)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", raw))
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD or DD/MM/YYYY")
		return domain.CalendarDate{}, false
	}
	return date, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error, providerID uuid.UUID) {
	var vErr *availability.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		log.Info("conflict", slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, store.ErrUnavailable):
		log.Error("availability store unavailable", slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusServiceUnavailable, "availability temporarily unavailable")
	default:
		log.Error("request failed", slog.Any("err", err), slog.String("provider_id", providerID.String()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
