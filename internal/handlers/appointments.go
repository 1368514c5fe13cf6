package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/lifecycle"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *store.AppointmentStore
	Audit        Publisher
	Log          *logrus.Entry
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *store.AppointmentStore, audit Publisher, log *logrus.Entry) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Audit: audit, Log: log}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctor_id"`
	PatientID       string `json:"patient_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Notes           string `json:"notes"`
}

// UpdateAppointmentRequest represents the request body for changing an appointment.
type UpdateAppointmentRequest struct {
	Status          string `json:"status"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

// CreateAppointment books an appointment in Pending status. Patients book
// for themselves; the patient id defaults to theirs.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	if actor.Role == models.RolePatient {
		if req.PatientID == "" {
			req.PatientID = actor.ID
		}
		if req.PatientID != actor.ID {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
	}

	apt, err := h.Appointments.Create(c.Request.Context(), store.NewAppointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		Notes:     req.Notes,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Created(c, "Appointment created successfully", apt)
	publish(c, h.Audit, apt.AppointmentID)
}

// GetAppointments lists the actor's appointments. Doctors may narrow the
// list to one patient with ?patient=.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	appointments, err := h.Appointments.ListFor(c.Request.Context(), actor, store.AppointmentFilter{
		PatientID: c.Query("patient"),
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointment fetches one appointment by internal id or display id.
// Accessible by the involved patient, doctor, or an admin.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	view, err := h.Appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	if actor.Role != models.RoleAdmin && actor.ID != view.PatientID && actor.ID != view.DoctorID {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}
	utils.Success(c, "Appointment fetched successfully", view)
}

// UpdateAppointment applies a status change or reschedule by the assigned
// doctor or patient.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	transition, err := h.Appointments.Update(c.Request.Context(), c.Param("id"), actor, lifecycle.Change{
		Status: req.Status,
		Date:   req.AppointmentDate,
		Time:   req.AppointmentTime,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Appointment updated successfully", gin.H{
		"appointment":     transition.Appointment,
		"previous_status": transition.From,
	})
	publish(c, h.Audit, transition.Appointment.AppointmentID)
}

// DeleteAppointment removes an appointment and its record. Admin only.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	apt, err := h.Appointments.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Appointment deleted successfully", apt)
	publish(c, h.Audit, apt.AppointmentID)
}
