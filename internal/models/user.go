package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Specializations accepted for doctors.
var Specializations = []string{
	"Cardiology",
	"Neurology",
	"Pediatrics",
	"Orthopedics",
	"Dermatology",
	"General Medicine",
	"Ophthalmology",
	"Psychiatry",
	"ENT",
	"Radiology",
}

// Credentials is embedded by every account that can log in.
type Credentials struct {
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
}

// SetPassword hashes a password and sets it on the account
func (c *Credentials) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the hashed password
func (c *Credentials) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password))
	return err == nil
}

// Doctor is a practitioner that patients book appointments with.
type Doctor struct {
	BaseModel
	Credentials
	Name           string                      `gorm:"size:100;not null" json:"name"`
	Age            int                         `json:"age,omitempty"`
	Gender         string                      `gorm:"size:20" json:"gender,omitempty"`
	Contact        string                      `gorm:"size:50" json:"contact,omitempty"`
	Specialization string                      `gorm:"size:50" json:"specialization,omitempty"`
	ScheduleTime   datatypes.JSONSlice[string] `json:"schedule_time,omitempty"`
}

// Patient is the owner of appointments and medical records.
type Patient struct {
	BaseModel
	Credentials
	Name    string `gorm:"size:100;not null" json:"name"`
	Age     int    `json:"age,omitempty"`
	Gender  string `gorm:"size:20" json:"gender,omitempty"`
	Contact string `gorm:"size:50" json:"contact,omitempty"`
	Address string `gorm:"size:255" json:"address,omitempty"`
}

// DoctorSummary is the doctor projection joined into appointment and record listings.
type DoctorSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Contact        string   `json:"contact,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
	ScheduleTime   []string `json:"schedule_time,omitempty"`
}

// PatientSummary is the patient projection joined into appointment and record listings.
type PatientSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact,omitempty"`
	Age     int    `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Address string `json:"address,omitempty"`
}

// Summary returns the display fields of the doctor.
func (d *Doctor) Summary() *DoctorSummary {
	if d == nil || d.ID == "" {
		return nil
	}
	return &DoctorSummary{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Contact:        d.Contact,
		Specialization: d.Specialization,
		ScheduleTime:   d.ScheduleTime,
	}
}

// Summary returns the display fields of the patient.
func (p *Patient) Summary() *PatientSummary {
	if p == nil || p.ID == "" {
		return nil
	}
	return &PatientSummary{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Contact: p.Contact,
		Age:     p.Age,
		Gender:  p.Gender,
		Address: p.Address,
	}
}

// Actor is the authenticated identity the authentication layer attaches to a request.
type Actor struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
