package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", got)

	got, err = NormalizeDate("2025-01-10T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", got)

	_, err = NormalizeDate("10/01/2025")
	assert.Error(t, err)
}

func TestNormalizeTime(t *testing.T) {
	for in, want := range map[string]string{
		"09:00":    "09:00",
		"9:00":     "09:00",
		"14:30:00": "14:30",
		"2:30PM":   "14:30",
		"9:05 AM":  "09:05",
	} {
		got, err := NormalizeTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeTime("25:00")
	assert.Error(t, err)
}

func TestSyncSlotKey(t *testing.T) {
	a := Appointment{DoctorID: "d", AppointmentDate: "2025-01-10", AppointmentTime: "09:00", Status: StatusPending}
	a.SyncSlotKey()
	require.NotNil(t, a.SlotKey)
	assert.Equal(t, "d|2025-01-10|09:00", *a.SlotKey)

	a.Status = StatusScheduled
	a.SyncSlotKey()
	assert.NotNil(t, a.SlotKey)

	a.Status = StatusCompleted
	a.SyncSlotKey()
	assert.NotNil(t, a.SlotKey, "completed appointments still occupied their slot")

	for _, s := range []AppointmentStatus{StatusCancelled, StatusRejected} {
		a.Status = s
		a.SyncSlotKey()
		assert.Nil(t, a.SlotKey, s)
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	a := Appointment{AppointmentDate: "2025-01-10", AppointmentTime: "09:00", Status: StatusScheduled}
	assert.Equal(t, StatusCompleted, a.EffectiveStatus(now))

	a.AppointmentTime = "09:30"
	assert.Equal(t, StatusScheduled, a.EffectiveStatus(now), "a slot starting now has not passed")

	a.AppointmentTime = "08:00"
	a.Status = StatusPending
	assert.Equal(t, StatusPending, a.EffectiveStatus(now))
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestNewAppointmentViewJoinsSummaries(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Appointment{
		AppointmentDate: "2024-12-31",
		AppointmentTime: "09:00",
		Status:          StatusScheduled,
		Doctor:          &Doctor{BaseModel: BaseModel{ID: "d"}, Name: "House", Specialization: "Cardiology"},
	}

	view := NewAppointmentView(a, now)
	assert.Equal(t, StatusCompleted, view.Status)
	assert.Equal(t, StatusScheduled, a.Status, "the source appointment is not modified")
	require.NotNil(t, view.Doctor)
	assert.Equal(t, "House", view.Doctor.Name)
	assert.Nil(t, view.Patient)
}
