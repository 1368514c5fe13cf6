package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// RecordStore keeps the single clinical record of each appointment.
type RecordStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecord is the clinical content a doctor writes.
type NewRecord struct {
	Symptoms      string
	Diagnosis     string
	Prescriptions string
}

// Add writes the record of an appointment. Only the appointment's doctor may
// write it and only once.
func (s *RecordStore) Add(ctx context.Context, appointmentID, doctorID string, in NewRecord) (*models.Record, error) {
	var record *models.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apt, err := findAppointment(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if apt.DoctorID != doctorID {
			return utils.AuthorizationError("Unauthorized to add record for this appointment")
		}

		var existing int64
		if err := tx.Model(&models.Record{}).Where("appointment_id = ?", apt.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing record: %w", err)
		}
		if existing > 0 {
			return utils.ConflictError("Record for this appointment already exists")
		}

		record = &models.Record{
			PatientID:      apt.PatientID,
			DoctorID:       doctorID,
			AppointmentKey: apt.ID,
			Symptoms:       in.Symptoms,
			Diagnosis:      in.Diagnosis,
			Prescriptions:  in.Prescriptions,
		}
		return tx.Omit(clause.Associations).Create(record).Error
	})
	if isDuplicate(err) {
		return nil, utils.ConflictError("Record for this appointment already exists")
	}
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("add record: %w", err)
	}
	return record, nil
}

// ListFor returns a patient's records as visible to the actor. Patients see
// only their own, doctors only the ones they wrote, admins all of them.
func (s *RecordStore) ListFor(ctx context.Context, actor models.Actor, patientID string) ([]models.RecordView, error) {
	q := s.preloaded(ctx).Where("patient_id = ?", patientID)

	switch actor.Role {
	case models.RolePatient:
		if actor.ID != patientID {
			return nil, utils.AuthorizationError("Unauthorized to view these records")
		}
	case models.RoleDoctor:
		q = q.Where("doctor_id = ?", actor.ID)
	case models.RoleAdmin:
	default:
		return nil, utils.AuthorizationError("Invalid role")
	}

	return s.views(q.Order("created_at desc"))
}

// ListForDoctor returns every record the doctor wrote, most recent
// appointment first.
func (s *RecordStore) ListForDoctor(ctx context.Context, doctorID string) ([]models.RecordView, error) {
	views, err := s.views(s.preloaded(ctx).Where("doctor_id = ?", doctorID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Appointment.AppointmentDate > views[j].Appointment.AppointmentDate
	})
	return views, nil
}

func (s *RecordStore) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Preload("Appointment")
}

// views runs q and drops records whose appointment no longer resolves.
func (s *RecordStore) views(q *gorm.DB) ([]models.RecordView, error) {
	var records []models.Record
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	now := s.now()
	views := make([]models.RecordView, 0, len(records))
	for _, r := range records {
		if view, ok := models.NewRecordView(r, now); ok {
			views = append(views, view)
		}
	}
	return views, nil
}

func (s *RecordStore) deleteForAppointments(ctx context.Context, tx *gorm.DB, appointmentIDs []string) error {
	if len(appointmentIDs) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Where("appointment_id IN ?", appointmentIDs).Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("delete appointment records: %w", err)
	}
	return nil
}

func (s *RecordStore) deleteForPatient(ctx context.Context, tx *gorm.DB, patientID string, appointmentIDs []string) error {
	q := tx.WithContext(ctx).Where("patient_id = ?", patientID)
	if len(appointmentIDs) > 0 {
		q = q.Or("appointment_id IN ?", appointmentIDs)
	}
	if err := q.Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("delete patient records: %w", err)
	}
	return nil
}
