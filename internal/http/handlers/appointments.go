package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/geocoder89/clinicdesk/internal/domain/appointment"
	"github.com/gin-gonic/gin"
)

type AppointmentLedger interface {
	List(ctx context.Context) ([]appointment.Appointment, error)
	Create(ctx context.Context, in appointment.CreateInput) (appointment.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, raw string) (appointment.Status, error)
}

type AppointmentsHandler struct {
	ledger AppointmentLedger
}

func NewAppointmentsHandler(l AppointmentLedger) *AppointmentsHandler {
	return &AppointmentsHandler{ledger: l}
}

func (h *AppointmentsHandler) List(ctx *gin.Context) {
	items, err := h.ledger.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Failed to fetch appointments", err)
		return
	}

	RespondWithETag(ctx, gin.H{
		"success": true,
		"data":    items,
	})
}

func (h *AppointmentsHandler) Create(ctx *gin.Context) {
	var req appointment.CreateAppointmentRequest

	if !BindJSON(ctx, &req, "Missing required fields") {
		return
	}

	created, err := h.ledger.Create(ctx.Request.Context(), appointment.CreateInput{
		AppointmentDate: req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
	})

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrSlotTaken):
			RespondConflict(ctx, "SLOT_TAKEN", "This time slot is already taken for the selected date")
		case errors.Is(err, appointment.ErrMissingFields):
			RespondBadRequest(ctx, "MISSING_FIELDS", "Missing required fields", nil)
		case errors.Is(err, appointment.ErrInvalidDate), errors.Is(err, appointment.ErrInvalidSlot):
			RespondBadRequest(ctx, "INVALID_FIELDS", err.Error(), nil)
		default:
			RespondInternal(ctx, "Failed to create appointment", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

const invalidStatusMessage = "Status must be en attente, confirmé, or annulé"

func (h *AppointmentsHandler) UpdateStatus(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "INVALID_ID", "Invalid appointment ID", nil)
		return
	}

	var req appointment.UpdateStatusRequest

	// a missing body leaves statut empty, which is reported as INVALID_STATUS
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondBadRequest(ctx, "INVALID_STATUS", invalidStatusMessage, nil)
		return
	}

	_, err := h.ledger.UpdateStatus(ctx.Request.Context(), id, req.Statut)

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrInvalidID):
			RespondBadRequest(ctx, "INVALID_ID", "Invalid appointment ID", nil)
		case errors.Is(err, appointment.ErrInvalidStatus):
			RespondBadRequest(ctx, "INVALID_STATUS", invalidStatusMessage, nil)
		case errors.Is(err, appointment.ErrNotFound):
			RespondNotFound(ctx, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		case errors.Is(err, appointment.ErrSlotTaken):
			RespondConflict(ctx, "SLOT_TAKEN", "This time slot is already taken for the selected date")
		default:
			RespondInternal(ctx, "Failed to update status", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Status updated successfully",
		"appointmentId": id,
	})
}
