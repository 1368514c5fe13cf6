package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// DoctorHandler handles doctor profile requests.
type DoctorHandler struct {
	Directory *store.Directory
	Audit     Publisher
	Log       *logrus.Entry
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(directory *store.Directory, audit Publisher, log *logrus.Entry) *DoctorHandler {
	return &DoctorHandler{Directory: directory, Audit: audit, Log: log}
}

// CreateDoctorRequest represents the request body for registering a doctor.
type CreateDoctorRequest struct {
	Name           string   `json:"name" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=6"`
	Age            int      `json:"age" binding:"omitempty,min=0,max=150"`
	Gender         string   `json:"gender"`
	Contact        string   `json:"contact"`
	Specialization string   `json:"specialization"`
	ScheduleTime   []string `json:"schedule_time"`
}

// CreateDoctor registers a doctor. Admin only.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Directory.CreateDoctor(c.Request.Context(), store.NewDoctor{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Age:            req.Age,
		Gender:         req.Gender,
		Contact:        req.Contact,
		Specialization: req.Specialization,
		ScheduleTime:   req.ScheduleTime,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Created(c, "Doctor registered successfully", doctor)
	publish(c, h.Audit, doctor.Name)
}

// GetDoctors lists every doctor.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListDoctors(c.Request.Context())
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctor fetches one doctor.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	doctor, err := h.Directory.Doctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// UpdateDoctor applies a partial profile update. Admins may update any
// doctor, doctors only themselves.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	id := c.Param("id")
	actor, _ := middleware.ActorFromContext(c)
	if !canManage(actor, models.RoleDoctor, id) {
		utils.Forbidden(c, "Access denied")
		return
	}

	var req store.DoctorUpdate
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Directory.UpdateDoctor(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Doctor updated successfully", doctor)
	publish(c, h.Audit, doctor.Name)
}

// DeleteDoctor removes a doctor with their appointments and records. Admin only.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctor, err := h.Directory.DeleteDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Doctor and related data deleted successfully", doctor)
	publish(c, h.Audit, doctor.Name)
}
