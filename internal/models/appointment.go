package models

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusRejected  AppointmentStatus = "Rejected"
)

// Terminal reports whether no further transition is defined from the status.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusRejected || s == StatusCompleted
}

// HoldsSlot reports whether an appointment in this status occupies its doctor's slot.
func (s AppointmentStatus) HoldsSlot() bool {
	return s != StatusCancelled && s != StatusRejected
}

const (
	// DateLayout is the wire and storage format of appointment_date.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of appointment_time.
	TimeLayout = "15:04"
)

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	AppointmentID   string            `gorm:"size:20;uniqueIndex" json:"appointment_id"`
	DoctorID        string            `gorm:"size:36;index" json:"doctor_id"`
	PatientID       string            `gorm:"size:36;index" json:"patient_id"`
	AppointmentDate string            `gorm:"size:10;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:5" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"size:20;default:'Pending';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`
	// SlotKey is set while the appointment holds its slot and NULL otherwise,
	// so the unique index only constrains active bookings.
	SlotKey *string `gorm:"size:100;uniqueIndex" json:"-"`

	// Relations
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"-"`
}

// SlotKeyFor builds the value of the unique slot column.
func SlotKeyFor(doctorID, date, clock string) string {
	return fmt.Sprintf("%s|%s|%s", doctorID, date, clock)
}

// SyncSlotKey sets or clears SlotKey from the current doctor, date, time and status.
func (a *Appointment) SyncSlotKey() {
	if !a.Status.HoldsSlot() {
		a.SlotKey = nil
		return
	}
	key := SlotKeyFor(a.DoctorID, a.AppointmentDate, a.AppointmentTime)
	a.SlotKey = &key
}

// StartsAt combines the stored date and time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.AppointmentDate+" "+a.AppointmentTime, loc)
}

// EffectiveStatus is the status a reader should see at now: a Scheduled
// appointment whose slot has passed reads as Completed.
func (a *Appointment) EffectiveStatus(now time.Time) AppointmentStatus {
	if a.Status != StatusScheduled {
		return a.Status
	}
	start, err := a.StartsAt(now.Location())
	if err != nil {
		return a.Status
	}
	if start.Before(now) {
		return StatusCompleted
	}
	return a.Status
}

// AppointmentView is an appointment with its doctor and patient joined at read time.
type AppointmentView struct {
	Appointment
	Doctor  *DoctorSummary  `json:"doctor,omitempty"`
	Patient *PatientSummary `json:"patient,omitempty"`
}

// NewAppointmentView projects a preloaded appointment, presenting its effective status at now.
func NewAppointmentView(a Appointment, now time.Time) AppointmentView {
	view := AppointmentView{
		Appointment: a,
		Doctor:      a.Doctor.Summary(),
		Patient:     a.Patient.Summary(),
	}
	view.Status = a.EffectiveStatus(now)
	return view
}

// NormalizeDate validates a YYYY-MM-DD date and returns it in canonical form.
// Full timestamps are accepted and truncated to their date.
func NormalizeDate(s string) (string, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// NormalizeTime validates a time of day and returns it as zero-padded HH:MM.
func NormalizeTime(s string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04:05", "3:04PM", "3:04 PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time %q, expected HH:MM", s)
}
