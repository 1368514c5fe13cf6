package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
)

// jan1 is the clock every store test runs at unless it says otherwise.
var jan1 = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	st      *store.Store
	doctor  *models.Doctor
	patient *models.Patient
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := models.InitDB(models.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{db: db, st: store.New(db, store.WithClock(func() time.Time { return now }))}
	f.doctor = f.addDoctor(t, "Gregory House", "house@clinic.test")
	f.patient = f.addPatient(t, "Jane Roe", "jane@clinic.test")
	return f
}

func (f *fixture) addDoctor(t *testing.T, name, email string) *models.Doctor {
	t.Helper()
	doctor, err := f.st.Directory.CreateDoctor(context.Background(), store.NewDoctor{
		Name:           name,
		Email:          email,
		Password:       "secret1",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)
	return doctor
}

func (f *fixture) addPatient(t *testing.T, name, email string) *models.Patient {
	t.Helper()
	patient, err := f.st.Directory.CreatePatient(context.Background(), store.NewPatient{
		Name:     name,
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	return patient
}

func (f *fixture) book(t *testing.T, date, clock string) *models.Appointment {
	t.Helper()
	apt, err := f.st.Appointments.Create(context.Background(), store.NewAppointment{
		DoctorID:  f.doctor.ID,
		PatientID: f.patient.ID,
		Date:      date,
		Time:      clock,
	})
	require.NoError(t, err)
	return apt
}

func (f *fixture) doctorActor() models.Actor {
	return models.Actor{ID: f.doctor.ID, Role: models.RoleDoctor, Name: f.doctor.Name}
}

func (f *fixture) patientActor() models.Actor {
	return models.Actor{ID: f.patient.ID, Role: models.RolePatient, Name: f.patient.Name}
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
