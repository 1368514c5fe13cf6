package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// RecordHandler handles medical record requests.
type RecordHandler struct {
	Records *store.RecordStore
	Audit   Publisher
	Log     *logrus.Entry
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(records *store.RecordStore, audit Publisher, log *logrus.Entry) *RecordHandler {
	return &RecordHandler{Records: records, Audit: audit, Log: log}
}

// CreateRecordRequest represents the request body for writing a record.
type CreateRecordRequest struct {
	Symptoms      string `json:"symptoms" binding:"required"`
	Diagnosis     string `json:"diagnosis" binding:"required"`
	Prescriptions string `json:"prescriptions"`
}

// CreateRecord writes the record of an appointment. Only its doctor may.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req CreateRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, _ := middleware.ActorFromContext(c)
	record, err := h.Records.Add(c.Request.Context(), c.Param("appointmentId"), actor.ID, store.NewRecord{
		Symptoms:      req.Symptoms,
		Diagnosis:     req.Diagnosis,
		Prescriptions: req.Prescriptions,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Created(c, "Record added successfully", record)
	publish(c, h.Audit, "")
}

// GetPatientRecords lists a patient's records as visible to the actor.
func (h *RecordHandler) GetPatientRecords(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	records, err := h.Records.ListFor(c.Request.Context(), actor, c.Param("patientId"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Records fetched successfully", records)
}

// GetDoctorRecords lists every record written by the authenticated doctor.
func (h *RecordHandler) GetDoctorRecords(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	records, err := h.Records.ListForDoctor(c.Request.Context(), actor.ID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Records fetched successfully", records)
}
