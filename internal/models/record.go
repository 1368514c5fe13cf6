package models

import "time"

// RecordCategory buckets records by how recent their appointment is.
type RecordCategory string

const (
	CategoryRecent RecordCategory = "recent"
	CategoryOlder  RecordCategory = "older"
)

// RecentWindow is how far back an appointment still counts as recent.
const RecentWindow = 30 * 24 * time.Hour

// Record is the clinical record written by the treating doctor for one appointment.
type Record struct {
	BaseModel
	PatientID string `gorm:"size:36;index" json:"patient_id"`
	DoctorID  string `gorm:"size:36;index" json:"doctor_id"`
	// AppointmentKey references Appointment.ID, not the APT display id.
	AppointmentKey string `gorm:"column:appointment_id;size:36;uniqueIndex" json:"appointment_id"`
	Symptoms       string `gorm:"type:text" json:"symptoms"`
	Diagnosis      string `gorm:"type:text" json:"diagnosis"`
	Prescriptions  string `gorm:"type:text" json:"prescriptions"`

	// Relations
	Doctor      *Doctor      `gorm:"foreignKey:DoctorID" json:"-"`
	Patient     *Patient     `gorm:"foreignKey:PatientID" json:"-"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentKey;references:ID" json:"-"`
}

// RecordAppointment is the appointment projection joined into record listings.
type RecordAppointment struct {
	ID              string            `json:"id"`
	AppointmentID   string            `json:"appointment_id"`
	AppointmentDate string            `json:"appointment_date"`
	AppointmentTime string            `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
}

// RecordView is a record with its doctor, patient and appointment joined at read time.
type RecordView struct {
	Record
	Doctor      *DoctorSummary     `json:"doctor,omitempty"`
	Patient     *PatientSummary    `json:"patient,omitempty"`
	Appointment *RecordAppointment `json:"appointment"`
	Category    RecordCategory     `json:"category"`
}

// CategoryFor reports whether an appointment on date is within RecentWindow of now.
// Unparseable dates are older.
func CategoryFor(date string, now time.Time) RecordCategory {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return CategoryOlder
	}
	if !d.Before(now.Add(-RecentWindow)) {
		return CategoryRecent
	}
	return CategoryOlder
}

// NewRecordView projects a preloaded record. ok is false when the record's
// appointment did not resolve.
func NewRecordView(r Record, now time.Time) (view RecordView, ok bool) {
	if r.Appointment == nil || r.Appointment.ID == "" {
		return RecordView{}, false
	}
	apt := r.Appointment
	return RecordView{
		Record:  r,
		Doctor:  r.Doctor.Summary(),
		Patient: r.Patient.Summary(),
		Appointment: &RecordAppointment{
			ID:              apt.ID,
			AppointmentID:   apt.AppointmentID,
			AppointmentDate: apt.AppointmentDate,
			AppointmentTime: apt.AppointmentTime,
			Status:          apt.EffectiveStatus(now),
		},
		Category: CategoryFor(apt.AppointmentDate, now),
	}, true
}
