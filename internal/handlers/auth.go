package handlers

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/config"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// adminID is the fixed identity of the configured administrator.
const adminID = "admin"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Directory *store.Directory
	Cfg       *config.Config
	Log       *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(directory *store.Directory, cfg *config.Config, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{Directory: directory, Cfg: cfg, Log: log}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  models.Actor `json:"user"`
}

// RegisterPatientRequest represents the request body for patient self registration.
type RegisterPatientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Age      int    `json:"age" binding:"omitempty,min=0,max=150"`
	Gender   string `json:"gender"`
	Contact  string `json:"contact"`
	Address  string `json:"address"`
}

// AdminLogin checks the configured administrator credentials.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	admin := h.Cfg.Admin
	emailOK := strings.EqualFold(strings.TrimSpace(req.Email), admin.Email)
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(admin.Password)) == 1
	if admin.Password == "" || !emailOK || !passwordOK {
		utils.Unauthorized(c, "Invalid admin credentials")
		return
	}

	h.respondWithToken(c, models.Actor{
		ID:    adminID,
		Role:  models.RoleAdmin,
		Name:  admin.Name,
		Email: strings.ToLower(admin.Email),
	})
}

// DoctorLogin authenticates a doctor.
func (h *AuthHandler) DoctorLogin(c *gin.Context) {
	h.login(c, models.RoleDoctor)
}

// PatientLogin authenticates a patient.
func (h *AuthHandler) PatientLogin(c *gin.Context) {
	h.login(c, models.RolePatient)
}

func (h *AuthHandler) login(c *gin.Context, role models.Role) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, err := h.Directory.Authenticate(c.Request.Context(), role, req.Email, req.Password)
	if utils.IsKind(err, utils.KindAuthorization) {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.respondWithToken(c, actor)
}

// RegisterPatient handles patient self registration and logs the patient in.
func (h *AuthHandler) RegisterPatient(c *gin.Context) {
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

	actor := models.Actor{ID: patient.ID, Role: models.RolePatient, Name: patient.Name, Email: patient.Email}
	token, err := h.token(actor)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Patient registered successfully", gin.H{"patient": patient, "token": token})
}

// Verify returns the identity carried by the bearer token.
func (h *AuthHandler) Verify(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	utils.Success(c, "Token is valid", actor)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, actor models.Actor) {
	token, err := h.token(actor)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Successfully logged in.", LoginResponse{Token: token, User: actor})
}

func (h *AuthHandler) token(actor models.Actor) (string, error) {
	ttl := time.Duration(h.Cfg.JWTExpirationHours) * time.Hour
	return utils.GenerateToken(actor, h.Cfg.JWTSecret, ttl)
}
