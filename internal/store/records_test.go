package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

func TestAddRecord(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()
	apt := f.book(t, "2024-12-30", "09:00")

	record, err := f.st.Records.Add(ctx, apt.AppointmentID, f.doctor.ID, store.NewRecord{
		Symptoms:      "fever",
		Diagnosis:     "flu",
		Prescriptions: "rest",
	})
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, record.PatientID)
	assert.Equal(t, f.doctor.ID, record.DoctorID)
	assert.Equal(t, apt.ID, record.AppointmentKey)

	views, err := f.st.Records.ListFor(ctx, f.patientActor(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Appointment)
	assert.Equal(t, apt.ID, views[0].Appointment.ID)
	assert.Equal(t, apt.AppointmentID, views[0].Appointment.AppointmentID)
	assert.Equal(t, "flu", views[0].Diagnosis)
}

func TestAddRecordRejections(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()
	apt := f.book(t, "2024-12-30", "09:00")
	stranger := f.addDoctor(t, "Lisa Cuddy", "cuddy@clinic.test")

	_, err := f.st.Records.Add(ctx, "APT-0404", f.doctor.ID, store.NewRecord{Symptoms: "x"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = f.st.Records.Add(ctx, apt.ID, stranger.ID, store.NewRecord{Symptoms: "x"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))
	assert.Equal(t, "Unauthorized to add record for this appointment", err.Error())
}

func TestSecondRecordAlwaysConflicts(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()
	apt := f.book(t, "2024-12-30", "09:00")

	_, err := f.st.Records.Add(ctx, apt.ID, f.doctor.ID, store.NewRecord{Symptoms: "fever"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.st.Records.Add(ctx, apt.ID, f.doctor.ID, store.NewRecord{Symptoms: "again"})
		require.Error(t, err)
		assert.True(t, utils.IsKind(err, utils.KindConflict))
	}
	assert.Equal(t, int64(1), f.count(t, &models.Record{}, "appointment_id = ?", apt.ID))
}

func TestRecordListForScopesAndCategorises(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()

	recent := f.book(t, "2024-12-20", "09:00")
	older := f.book(t, "2024-10-01", "09:00")
	for _, apt := range []*models.Appointment{recent, older} {
		_, err := f.st.Records.Add(ctx, apt.ID, f.doctor.ID, store.NewRecord{Symptoms: "s", Diagnosis: "d"})
		require.NoError(t, err)
	}

	colleague := f.addDoctor(t, "Lisa Cuddy", "cuddy@clinic.test")
	theirs, err := f.st.Appointments.Create(ctx, store.NewAppointment{DoctorID: colleague.ID, PatientID: f.patient.ID, Date: "2024-12-28", Time: "09:00"})
	require.NoError(t, err)
	_, err = f.st.Records.Add(ctx, theirs.ID, colleague.ID, store.NewRecord{Symptoms: "s"})
	require.NoError(t, err)

	own, err := f.st.Records.ListFor(ctx, f.patientActor(), f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, own, 3)

	byDoctor, err := f.st.Records.ListFor(ctx, f.doctorActor(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, byDoctor, 2, "doctors only see records they wrote")
	categories := map[string]models.RecordCategory{}
	for _, r := range byDoctor {
		require.NotNil(t, r.Appointment)
		categories[r.Appointment.AppointmentID] = r.Category
		assert.Equal(t, "Gregory House", r.Doctor.Name)
		assert.Equal(t, "Jane Roe", r.Patient.Name)
	}
	assert.Equal(t, models.CategoryRecent, categories[recent.AppointmentID])
	assert.Equal(t, models.CategoryOlder, categories[older.AppointmentID])

	all, err := f.st.Records.ListFor(ctx, models.Actor{ID: "admin", Role: models.RoleAdmin}, f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.st.Records.ListFor(ctx, models.Actor{ID: "someone-else", Role: models.RolePatient}, f.patient.ID)
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))
}

func TestRecordsWithoutAppointmentAreDropped(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()
	apt := f.book(t, "2024-12-20", "09:00")

	_, err := f.st.Records.Add(ctx, apt.ID, f.doctor.ID, store.NewRecord{Symptoms: "s"})
	require.NoError(t, err)

	// Remove the appointment behind the store's back.
	require.NoError(t, f.db.Where("id = ?", apt.ID).Delete(&models.Appointment{}).Error)

	views, err := f.st.Records.ListFor(ctx, f.patientActor(), f.patient.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListForDoctorNewestAppointmentFirst(t *testing.T) {
	f := newFixture(t, jan1)
	ctx := context.Background()

	for _, date := range []string{"2024-11-01", "2024-12-24", "2024-12-01"} {
		apt := f.book(t, date, "09:00")
		_, err := f.st.Records.Add(ctx, apt.ID, f.doctor.ID, store.NewRecord{Symptoms: date})
		require.NoError(t, err)
	}

	views, err := f.st.Records.ListForDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "2024-12-24", views[0].Appointment.AppointmentDate)
	assert.Equal(t, "2024-12-01", views[1].Appointment.AppointmentDate)
	assert.Equal(t, "2024-11-01", views[2].Appointment.AppointmentDate)
	assert.Equal(t, models.CategoryRecent, views[0].Category)
	assert.Equal(t, models.CategoryOlder, views[2].Category)
}
