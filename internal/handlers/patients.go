package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// PatientHandler handles patient profile requests.
type PatientHandler struct {
	Directory *store.Directory
	Audit     Publisher
	Log       *logrus.Entry
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(directory *store.Directory, audit Publisher, log *logrus.Entry) *PatientHandler {
	return &PatientHandler{Directory: directory, Audit: audit, Log: log}
}

// CreatePatient registers a patient on their behalf. Admin only.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := h.Directory.CreatePatient(c.Request.Context(), store.NewPatient{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Gender:   req.Gender,
		Contact:  req.Contact,
		Address:  req.Address,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Created(c, "Patient registered successfully", patient)
	publish(c, h.Audit, patient.Name)
}

// GetPatients lists every patient. Admins and doctors only.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	patients, err := h.Directory.ListPatients(c.Request.Context())
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatient fetches one patient. Patients may only fetch themselves.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	actor, _ := middleware.ActorFromContext(c)
	if actor.Role == models.RolePatient && actor.ID != id {
		utils.Forbidden(c, "Access denied")
		return
	}

	patient, err := h.Directory.Patient(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient applies a partial profile update. Admins may update any
// patient, patients only themselves.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id := c.Param("id")
	actor, _ := middleware.ActorFromContext(c)
	if !canManage(actor, models.RolePatient, id) {
		utils.Forbidden(c, "Access denied")
		return
	}

	var req store.PatientUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := h.Directory.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
	publish(c, h.Audit, patient.Name)
}

// DeletePatient removes a patient with their appointments and records. Admin only.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patient, err := h.Directory.DeletePatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Patient and related data deleted successfully", patient)
	publish(c, h.Audit, patient.Name)
}
