package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// Directory stores doctor and patient profiles.
type Directory struct {
	db           *gorm.DB
	appointments *AppointmentStore
}

// NewDoctor is the registration payload of a doctor.
type NewDoctor struct {
	Name           string
	Email          string
	Password       string
	Age            int
	Gender         string
	Contact        string
	Specialization string
	ScheduleTime   []string
}

// NewPatient is the registration payload of a patient.
type NewPatient struct {
	Name     string
	Email    string
	Password string
	Age      int
	Gender   string
	Contact  string
	Address  string
}

// DoctorUpdate carries the fields to change; nil fields are kept.
type DoctorUpdate struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Password       *string  `json:"password"`
	Age            *int     `json:"age"`
	Gender         *string  `json:"gender"`
	Contact        *string  `json:"contact"`
	Specialization *string  `json:"specialization"`
	ScheduleTime   []string `json:"schedule_time"`
}

// PatientUpdate carries the fields to change; nil fields are kept.
type PatientUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	Contact  *string `json:"contact"`
	Address  *string `json:"address"`
}

// CreateDoctor registers a doctor. A taken email is a conflict.
func (d *Directory) CreateDoctor(ctx context.Context, in NewDoctor) (*models.Doctor, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, utils.ValidationError("Name, email, and password are required.")
	}
	if in.Specialization != "" && !slices.Contains(models.Specializations, in.Specialization) {
		return nil, utils.ValidationError("Unknown specialization %q", in.Specialization)
	}

	doctor := models.Doctor{
		Name:           strings.TrimSpace(in.Name),
		Age:            in.Age,
		Gender:         in.Gender,
		Contact:        strings.TrimSpace(in.Contact),
		Specialization: in.Specialization,
		ScheduleTime:   in.ScheduleTime,
	}
	doctor.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := doctor.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := d.db.WithContext(ctx).Create(&doctor).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.ConflictError("Doctor already exists.")
		}
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return &doctor, nil
}

// CreatePatient registers a patient. A taken email is a conflict.
func (d *Directory) CreatePatient(ctx context.Context, in NewPatient) (*models.Patient, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, utils.ValidationError("Name, email, and password are required.")
	}

	patient := models.Patient{
		Name:    strings.TrimSpace(in.Name),
		Age:     in.Age,
		Gender:  in.Gender,
		Contact: strings.TrimSpace(in.Contact),
		Address: in.Address,
	}
	patient.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := patient.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := d.db.WithContext(ctx).Create(&patient).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.ConflictError("User already exists.")
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &patient, nil
}

// Doctor returns the doctor with the given id.
func (d *Directory) Doctor(ctx context.Context, id string) (*models.Doctor, error) {
	return findDoctor(ctx, d.db, id)
}

// Patient returns the patient with the given id.
func (d *Directory) Patient(ctx context.Context, id string) (*models.Patient, error) {
	return findPatient(ctx, d.db, id)
}

// ListDoctors returns every doctor ordered by name.
func (d *Directory) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := d.db.WithContext(ctx).Order("name asc").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// ListPatients returns every patient ordered by name.
func (d *Directory) ListPatients(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	if err := d.db.WithContext(ctx).Order("name asc").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// UpdateDoctor applies a partial profile update.
func (d *Directory) UpdateDoctor(ctx context.Context, id string, in DoctorUpdate) (*models.Doctor, error) {
	doctor, err := findDoctor(ctx, d.db, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, utils.ValidationError("Name cannot be empty")
		}
		doctor.Name = strings.TrimSpace(*in.Name)
	}
	if in.Specialization != nil {
		if *in.Specialization != "" && !slices.Contains(models.Specializations, *in.Specialization) {
			return nil, utils.ValidationError("Unknown specialization %q", *in.Specialization)
		}
		doctor.Specialization = *in.Specialization
	}
	if in.Age != nil {
		doctor.Age = *in.Age
	}
	if in.Gender != nil {
		doctor.Gender = *in.Gender
	}
	if in.Contact != nil {
		doctor.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.ScheduleTime != nil {
		doctor.ScheduleTime = in.ScheduleTime
	}
	if err := applyCredentials(&doctor.Credentials, in.Email, in.Password); err != nil {
		return nil, err
	}

	if err := d.db.WithContext(ctx).Save(doctor).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.ConflictError("New email is already in use")
		}
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return doctor, nil
}

// UpdatePatient applies a partial profile update.
func (d *Directory) UpdatePatient(ctx context.Context, id string, in PatientUpdate) (*models.Patient, error) {
	patient, err := findPatient(ctx, d.db, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, utils.ValidationError("Name cannot be empty")
		}
		patient.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		patient.Age = *in.Age
	}
	if in.Gender != nil {
		patient.Gender = *in.Gender
	}
	if in.Contact != nil {
		patient.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Address != nil {
		patient.Address = *in.Address
	}
	if err := applyCredentials(&patient.Credentials, in.Email, in.Password); err != nil {
		return nil, err
	}

	if err := d.db.WithContext(ctx).Save(patient).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.ConflictError("New email is already in use")
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return patient, nil
}

// DeleteDoctor removes a doctor together with their appointments and the
// records of those appointments.
func (d *Directory) DeleteDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor *models.Doctor
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if doctor, err = findDoctor(ctx, tx, id); err != nil {
			return err
		}
		if err := d.appointments.deleteByDoctor(ctx, tx, doctor.ID); err != nil {
			return err
		}
		return tx.Delete(doctor).Error
	})
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

// DeletePatient removes a patient together with their appointments and
// every record referencing them.
func (d *Directory) DeletePatient(ctx context.Context, id string) (*models.Patient, error) {
	var patient *models.Patient
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if patient, err = findPatient(ctx, tx, id); err != nil {
			return err
		}
		if err := d.appointments.deleteByPatient(ctx, tx, patient.ID); err != nil {
			return err
		}
		return tx.Delete(patient).Error
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// Authenticate checks a doctor or patient login and returns the actor.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (d *Directory) Authenticate(ctx context.Context, role models.Role, email, password string) (models.Actor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	invalid := utils.AuthorizationError("Invalid credentials")

	switch role {
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := d.db.WithContext(ctx).Where("email = ?", email).Take(&doctor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Actor{}, invalid
			}
			return models.Actor{}, err
		}
		if !doctor.CheckPassword(password) {
			return models.Actor{}, invalid
		}
		return models.Actor{ID: doctor.ID, Role: role, Name: doctor.Name, Email: doctor.Email}, nil

	case models.RolePatient:
		var patient models.Patient
		if err := d.db.WithContext(ctx).Where("email = ?", email).Take(&patient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Actor{}, invalid
			}
			return models.Actor{}, err
		}
		if !patient.CheckPassword(password) {
			return models.Actor{}, invalid
		}
		return models.Actor{ID: patient.ID, Role: role, Name: patient.Name, Email: patient.Email}, nil
	}
	return models.Actor{}, utils.ValidationError("Unsupported role %q", role)
}

// DisplayName resolves the current name of a doctor or patient for the
// activity log. ok is false when the account no longer exists.
func (d *Directory) DisplayName(ctx context.Context, kind models.ActorKind, id string) (name string, ok bool, err error) {
	switch kind {
	case models.ActorDoctor:
		doctor, err := findDoctor(ctx, d.db, id)
		if utils.IsKind(err, utils.KindNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return doctor.Name, true, nil
	case models.ActorPatient:
		patient, err := findPatient(ctx, d.db, id)
		if utils.IsKind(err, utils.KindNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return patient.Name, true, nil
	}
	return "", false, nil
}

func applyCredentials(c *models.Credentials, email, password *string) error {
	if email != nil {
		e := strings.ToLower(strings.TrimSpace(*email))
		if e == "" {
			return utils.ValidationError("Email cannot be empty")
		}
		c.Email = e
	}
	if password != nil {
		if len(*password) < 6 {
			return utils.ValidationError("Password must be at least 6 characters")
		}
		if err := c.SetPassword(*password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}
	return nil
}

func findDoctor(ctx context.Context, tx *gorm.DB, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := tx.WithContext(ctx).Where("id = ?", id).Take(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("Doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return &doctor, nil
}

func findPatient(ctx context.Context, tx *gorm.DB, id string) (*models.Patient, error) {
	var patient models.Patient
	err := tx.WithContext(ctx).Where("id = ?", id).Take(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &patient, nil
}
