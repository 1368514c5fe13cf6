package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

func TestDecide(t *testing.T) {
	doctor := models.Actor{ID: "doc-1", Role: models.RoleDoctor}
	patient := models.Actor{ID: "pat-1", Role: models.RolePatient}
	snapshot := func(status models.AppointmentStatus) Snapshot {
		return Snapshot{Status: status, DoctorID: "doc-1", PatientID: "pat-1", Date: "2025-01-10", Time: "09:00"}
	}

	tests := []struct {
		name    string
		current models.AppointmentStatus
		actor   models.Actor
		change  Change
		want    Outcome
		errKind utils.ErrorKind
	}{
		{
			name:    "doctor accepts with mixed case and whitespace",
			current: models.StatusPending,
			actor:   doctor,
			change:  Change{Status: "Accepted  "},
			want:    Outcome{Status: models.StatusScheduled, Date: "2025-01-10", Time: "09:00"},
		},
		{
			name:    "doctor schedules",
			current: models.StatusPending,
			actor:   doctor,
			change:  Change{Status: "SCHEDULED"},
			want:    Outcome{Status: models.StatusScheduled, Date: "2025-01-10", Time: "09:00"},
		},
		{
			name:    "doctor rejects",
			current: models.StatusPending,
			actor:   doctor,
			change:  Change{Status: "rejected"},
			want:    Outcome{Status: models.StatusRejected, Date: "2025-01-10", Time: "09:00"},
		},
		{
			name:    "doctor completes a pending appointment",
			current: models.StatusPending,
			actor:   doctor,
			change:  Change{Status: "completed"},
			want:    Outcome{Status: models.StatusCompleted, Date: "2025-01-10", Time: "09:00"},
		},
		{
			name:    "doctor sends an unknown token",
			current: models.StatusPending,
			actor:   doctor,
			change:  Change{Status: "bogus"},
			errKind: utils.KindValidation,
		},
		{
			name:    "doctor cannot cancel",
			current: models.StatusScheduled,
			actor:   doctor,
			change:  Change{Status: "cancelled"},
			errKind: utils.KindValidation,
		},
		{
			name:    "patient cancels",
			current: models.StatusScheduled,
			actor:   patient,
			change:  Change{Status: " Cancelled"},
			want:    Outcome{Status: models.StatusCancelled, Date: "2025-01-10", Time: "09:00"},
		},
		{
			name:    "patient moves the date only",
			current: models.StatusScheduled,
			actor:   patient,
			change:  Change{Date: "2025-01-15"},
			want:    Outcome{Status: models.StatusPending, Date: "2025-01-15", Time: "09:00", Rescheduled: true},
		},
		{
			name:    "patient moves the time only",
			current: models.StatusPending,
			actor:   patient,
			change:  Change{Time: "11:00"},
			want:    Outcome{Status: models.StatusPending, Date: "2025-01-10", Time: "11:00", Rescheduled: true},
		},
		{
			name:    "patient sends nothing usable",
			current: models.StatusPending,
			actor:   patient,
			change:  Change{Status: "scheduled"},
			errKind: utils.KindValidation,
		},
		{
			name:    "patient cannot touch a completed appointment",
			current: models.StatusCompleted,
			actor:   patient,
			change:  Change{Status: "cancelled"},
			errKind: utils.KindValidation,
		},
		{
			name:    "doctor cannot reopen a cancelled appointment",
			current: models.StatusCancelled,
			actor:   doctor,
			change:  Change{Status: "scheduled"},
			errKind: utils.KindValidation,
		},
		{
			name:    "another doctor",
			current: models.StatusPending,
			actor:   models.Actor{ID: "doc-2", Role: models.RoleDoctor},
			change:  Change{Status: "scheduled"},
			errKind: utils.KindAuthorization,
		},
		{
			name:    "another patient",
			current: models.StatusPending,
			actor:   models.Actor{ID: "pat-2", Role: models.RolePatient},
			change:  Change{Status: "cancelled"},
			errKind: utils.KindAuthorization,
		},
		{
			name:    "admin",
			current: models.StatusPending,
			actor:   models.Actor{ID: "admin", Role: models.RoleAdmin},
			change:  Change{Status: "scheduled"},
			errKind: utils.KindAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(snapshot(tt.current), tt.actor, tt.change)
			if tt.errKind != 0 {
				require.Error(t, err)
				assert.True(t, utils.IsKind(err, tt.errKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideTerminalMessage(t *testing.T) {
	_, err := Decide(
		Snapshot{Status: models.StatusRejected, DoctorID: "d", PatientID: "p"},
		models.Actor{ID: "p", Role: models.RolePatient},
		Change{Date: "2025-02-01"},
	)
	require.Error(t, err)
	assert.Equal(t, "Appointment is already rejected and can no longer be changed", err.Error())
}
