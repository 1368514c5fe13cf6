package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCategoryFor(t *testing.T) {
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, CategoryRecent, CategoryFor("2025-01-31", now))
	assert.Equal(t, CategoryRecent, CategoryFor("2025-01-02", now))
	assert.Equal(t, CategoryOlder, CategoryFor("2024-12-31", now))
	assert.Equal(t, CategoryOlder, CategoryFor("not a date", now))
}

func TestNewRecordViewDropsUnresolvedAppointments(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := NewRecordView(Record{}, now)
	assert.False(t, ok)

	view, ok := NewRecordView(Record{
		Appointment: &Appointment{BaseModel: BaseModel{ID: "a"}, AppointmentID: "APT-0001", AppointmentDate: "2024-12-25", AppointmentTime: "10:00", Status: StatusScheduled},
	}, now)
	assert.True(t, ok)
	assert.Equal(t, CategoryRecent, view.Category)
	assert.Equal(t, "APT-0001", view.Appointment.AppointmentID)
	assert.Equal(t, StatusCompleted, view.Appointment.Status)
}

func TestRecordBelongsToAppointment(t *testing.T) {
	s, err := schema.Parse(&Record{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	rel, ok := s.Relationships.Relations["Appointment"]
	require.True(t, ok)
	assert.Equal(t, schema.BelongsTo, rel.Type)
	require.Len(t, rel.References, 1)
	assert.Equal(t, "appointment_id", rel.References[0].ForeignKey.DBName)
	assert.Equal(t, "Record", rel.References[0].ForeignKey.Schema.Name)
	assert.Equal(t, "id", rel.References[0].PrimaryKey.DBName)
	assert.Equal(t, "Appointment", rel.References[0].PrimaryKey.Schema.Name)
}

func TestLogEntryAttribute(t *testing.T) {
	var e LogEntry
	e.Attribute("doc-1", ActorDoctor, "House (Doctor)")
	assert.Equal(t, "doc-1", *e.CreatedBy)
	assert.Equal(t, ActorDoctor, *e.CreatedByModel)
	assert.Equal(t, "House (Doctor)", e.CreatedByName)

	e.Attribute("doc-1", "", "")
	assert.Nil(t, e.CreatedBy)
	assert.Nil(t, e.CreatedByModel)
	assert.Equal(t, SystemActorName, e.CreatedByName)
}

func TestCredentials(t *testing.T) {
	var c Credentials
	assert.NoError(t, c.SetPassword("secret1"))
	assert.NotEqual(t, "secret1", c.Password)
	assert.True(t, c.CheckPassword("secret1"))
	assert.False(t, c.CheckPassword("secret2"))
}
