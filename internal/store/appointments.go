package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-app-server/internal/lifecycle"
	"clinic-app-server/internal/metrics"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

const slotTakenMessage = "This doctor already has an appointment at the selected date and time."

// AppointmentStore keeps appointments and enforces one active booking per
// doctor, date and time.
type AppointmentStore struct {
	db        *gorm.DB
	seq       *Sequencer
	records   *RecordStore
	directory *Directory
	now       func() time.Time
}

// NewAppointment is the booking request.
type NewAppointment struct {
	DoctorID  string
	PatientID string
	Date      string
	Time      string
	Notes     string
}

// AppointmentFilter narrows a listing. PatientID only applies to doctors.
type AppointmentFilter struct {
	PatientID string
}

// Transition is an applied status change.
type Transition struct {
	Appointment *models.Appointment
	From        models.AppointmentStatus
}

// Create books an appointment in Pending status and assigns its display identifier.
func (s *AppointmentStore) Create(ctx context.Context, in NewAppointment) (*models.Appointment, error) {
	if in.DoctorID == "" || in.PatientID == "" || in.Date == "" || in.Time == "" {
		return nil, utils.ValidationError("Incomplete data")
	}
	date, err := models.NormalizeDate(strings.TrimSpace(in.Date))
	if err != nil {
		return nil, utils.ValidationError("%s", err.Error())
	}
	clock, err := models.NormalizeTime(strings.TrimSpace(in.Time))
	if err != nil {
		return nil, utils.ValidationError("%s", err.Error())
	}

	if _, err := s.directory.Doctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}
	if _, err := s.directory.Patient(ctx, in.PatientID); err != nil {
		return nil, err
	}

	apt := &models.Appointment{
		DoctorID:        in.DoctorID,
		PatientID:       in.PatientID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          models.StatusPending,
		Notes:           in.Notes,
	}
	apt.SyncSlotKey()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlotFree(ctx, tx, apt); err != nil {
			return err
		}
		n, err := s.seq.Next(ctx, tx, AppointmentCounter)
		if err != nil {
			return err
		}
		apt.AppointmentID = FormatAppointmentID(n)
		return tx.Omit(clause.Associations).Create(apt).Error
	})
	if err != nil {
		return nil, slotError(err, "create appointment")
	}
	return apt, nil
}

// Get returns one appointment with its doctor and patient joined.
func (s *AppointmentStore) Get(ctx context.Context, id string) (*models.AppointmentView, error) {
	apt, err := findAppointment(ctx, s.db.Preload("Doctor").Preload("Patient"), id)
	if err != nil {
		return nil, err
	}
	view := models.NewAppointmentView(*apt, s.now())
	return &view, nil
}

// ListFor returns the appointments visible to the actor: all for admins,
// their own for doctors and patients.
func (s *AppointmentStore) ListFor(ctx context.Context, actor models.Actor, filter AppointmentFilter) ([]models.AppointmentView, error) {
	if actor.ID == "" || actor.Role == "" {
		return nil, utils.AuthorizationError("Unauthorized")
	}

	q := s.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Order("appointment_date asc, appointment_time asc")

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		q = q.Where("doctor_id = ?", actor.ID)
		if filter.PatientID != "" {
			q = q.Where("patient_id = ?", filter.PatientID)
		}
	case models.RolePatient:
		q = q.Where("patient_id = ?", actor.ID)
	default:
		return nil, utils.AuthorizationError("Invalid role")
	}

	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	views := make([]models.AppointmentView, 0, len(appointments))
	for _, apt := range appointments {
		views = append(views, models.NewAppointmentView(apt, now))
	}
	return views, nil
}

// Update applies an actor's change through the lifecycle rules and persists it.
func (s *AppointmentStore) Update(ctx context.Context, id string, actor models.Actor, change lifecycle.Change) (*Transition, error) {
	var err error
	if change.Date != "" {
		if change.Date, err = models.NormalizeDate(strings.TrimSpace(change.Date)); err != nil {
			return nil, utils.ValidationError("%s", err.Error())
		}
	}
	if change.Time != "" {
		if change.Time, err = models.NormalizeTime(strings.TrimSpace(change.Time)); err != nil {
			return nil, utils.ValidationError("%s", err.Error())
		}
	}

	var result Transition
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apt, err := findAppointment(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}

		current := lifecycle.Snapshot{
			Status:    apt.EffectiveStatus(s.now()),
			DoctorID:  apt.DoctorID,
			PatientID: apt.PatientID,
			Date:      apt.AppointmentDate,
			Time:      apt.AppointmentTime,
		}
		outcome, err := lifecycle.Decide(current, actor, change)
		if err != nil {
			return err
		}

		result.From = apt.Status
		apt.Status = outcome.Status
		apt.AppointmentDate = outcome.Date
		apt.AppointmentTime = outcome.Time
		apt.SyncSlotKey()

		if outcome.Rescheduled {
			if err := ensureSlotFree(ctx, tx, apt); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(apt).Error; err != nil {
			return err
		}
		result.Appointment = apt
		return nil
	})
	if err != nil {
		return nil, slotError(err, "update appointment")
	}

	metrics.AppointmentTransitions.WithLabelValues(string(result.From), string(result.Appointment.Status)).Inc()
	return &result, nil
}

// Delete removes an appointment and its record.
func (s *AppointmentStore) Delete(ctx context.Context, id string) (*models.Appointment, error) {
	var apt *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if apt, err = findAppointment(ctx, tx, id); err != nil {
			return err
		}
		if err := s.records.deleteForAppointments(ctx, tx, []string{apt.ID}); err != nil {
			return err
		}
		return tx.Delete(apt).Error
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// ReconcilePast marks every Scheduled appointment whose slot has passed as
// Completed and returns the appointments it changed.
func (s *AppointmentStore) ReconcilePast(ctx context.Context) ([]models.Appointment, error) {
	now := s.now()

	var candidates []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ? AND appointment_date <= ?", models.StatusScheduled, now.Format(models.DateLayout)).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("find elapsed appointments: %w", err)
	}

	var (
		elapsed []models.Appointment
		ids     []string
	)
	for _, apt := range candidates {
		if apt.EffectiveStatus(now) == models.StatusCompleted {
			apt.Status = models.StatusCompleted
			elapsed = append(elapsed, apt)
			ids = append(ids, apt.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id IN ? AND status = ?", ids, models.StatusScheduled).
		Updates(map[string]interface{}{"status": models.StatusCompleted, "updated_at": now}).Error
	if err != nil {
		return nil, fmt.Errorf("complete elapsed appointments: %w", err)
	}

	metrics.AppointmentTransitions.WithLabelValues(string(models.StatusScheduled), string(models.StatusCompleted)).Add(float64(len(ids)))
	return elapsed, nil
}

// PatientName returns the name of the patient booked on an appointment.
func (s *AppointmentStore) PatientName(ctx context.Context, appointmentID string) (string, error) {
	apt, err := findAppointment(ctx, s.db.Preload("Patient"), appointmentID)
	if err != nil {
		return "", err
	}
	if apt.Patient == nil {
		return "", utils.NotFoundError("Patient not found")
	}
	return apt.Patient.Name, nil
}

func (s *AppointmentStore) deleteByDoctor(ctx context.Context, tx *gorm.DB, doctorID string) error {
	var ids []string
	if err := tx.WithContext(ctx).Model(&models.Appointment{}).Where("doctor_id = ?", doctorID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("collect doctor appointments: %w", err)
	}
	if err := s.records.deleteForAppointments(ctx, tx, ids); err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("doctor_id = ?", doctorID).Delete(&models.Appointment{}).Error; err != nil {
		return fmt.Errorf("delete doctor appointments: %w", err)
	}
	return nil
}

func (s *AppointmentStore) deleteByPatient(ctx context.Context, tx *gorm.DB, patientID string) error {
	var ids []string
	if err := tx.WithContext(ctx).Model(&models.Appointment{}).Where("patient_id = ?", patientID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("collect patient appointments: %w", err)
	}
	if err := s.records.deleteForPatient(ctx, tx, patientID, ids); err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("patient_id = ?", patientID).Delete(&models.Appointment{}).Error; err != nil {
		return fmt.Errorf("delete patient appointments: %w", err)
	}
	return nil
}

// ensureSlotFree is the application-level double booking check. The unique
// slot_key index backs it up when two writers race past it.
func ensureSlotFree(ctx context.Context, tx *gorm.DB, apt *models.Appointment) error {
	if apt.SlotKey == nil {
		return nil
	}
	var taken int64
	err := tx.WithContext(ctx).Model(&models.Appointment{}).
		Where("slot_key = ? AND id <> ?", *apt.SlotKey, apt.ID).
		Count(&taken).Error
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if taken > 0 {
		metrics.BookingConflicts.WithLabelValues("application").Inc()
		return utils.ConflictError(slotTakenMessage)
	}
	return nil
}

func slotError(err error, op string) error {
	if isDuplicate(err) {
		metrics.BookingConflicts.WithLabelValues("storage").Inc()
		return utils.ConflictError(slotTakenMessage)
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
