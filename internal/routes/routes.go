package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/metrics"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, st *store.Store, publisher handlers.Publisher, cfg *config.Config, log *logrus.Entry) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st.Directory, cfg, log)
	doctorHandler := handlers.NewDoctorHandler(st.Directory, publisher, log)
	patientHandler := handlers.NewPatientHandler(st.Directory, publisher, log)
	appointmentHandler := handlers.NewAppointmentHandler(st.Appointments, publisher, log)
	recordHandler := handlers.NewRecordHandler(st.Records, publisher, log)
	logHandler := handlers.NewLogHandler(st.Logs, log)

	authenticated := middleware.AuthMiddleware(cfg.JWTSecret)
	adminOnly := middleware.RoleAuthMiddleware(models.RoleAdmin)

	// Public routes (no authentication required)
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/admin/login", authHandler.AdminLogin)
		authRoutes.POST("/doctor/login", authHandler.DoctorLogin)
		authRoutes.POST("/patient/login", authHandler.PatientLogin)
		authRoutes.POST("/patient/register", authHandler.RegisterPatient)
		authRoutes.GET("/verify", authenticated, authHandler.Verify)
	}

	// Authenticated routes
	api := router.Group("/api")
	api.Use(authenticated)
	{
		doctorRoutes := api.Group("/doctor")
		{
			doctorRoutes.POST("", adminOnly, doctorHandler.CreateDoctor)
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
			// Admin or the doctor themselves, checked in the handler
			doctorRoutes.PUT("/:id", doctorHandler.UpdateDoctor)
			doctorRoutes.PATCH("/:id", doctorHandler.UpdateDoctor)
			doctorRoutes.DELETE("/:id", adminOnly, doctorHandler.DeleteDoctor)
		}

		patientRoutes := api.Group("/patient")
		{
			patientRoutes.POST("", adminOnly, patientHandler.CreatePatient)
			patientRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatient)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.PATCH("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", adminOnly, patientHandler.DeletePatient)
		}

		appointmentRoutes := api.Group("/appointment")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			// Assigned doctor or patient only, decided by the lifecycle rules
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.DELETE("/:id", adminOnly, appointmentHandler.DeleteAppointment)
		}

		recordRoutes := api.Group("/record")
		{
			recordRoutes.POST("/:appointmentId", middleware.RoleAuthMiddleware(models.RoleDoctor), recordHandler.CreateRecord)
			recordRoutes.GET("/doctor/me", middleware.RoleAuthMiddleware(models.RoleDoctor), recordHandler.GetDoctorRecords)
			recordRoutes.GET("/:patientId", recordHandler.GetPatientRecords)
		}

		api.GET("/logs", adminOnly, logHandler.GetLogs)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
