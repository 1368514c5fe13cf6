// Package store persists doctors, patients, appointments, records and the
// activity log. Cross-entity cascades are explicit transactions here rather
// than ORM hooks.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// Store groups the stores sharing one database handle.
type Store struct {
	Directory    *Directory
	Appointments *AppointmentStore
	Records      *RecordStore
	Logs         *LogStore
	Sequencer    *Sequencer
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, e.g. to pin "now" in tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New wires every store around db.
func New(db *gorm.DB, opts ...Option) *Store {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	seq := &Sequencer{db: db}
	records := &RecordStore{db: db, now: o.now}
	appointments := &AppointmentStore{db: db, seq: seq, records: records, now: o.now}
	directory := &Directory{db: db, appointments: appointments}
	appointments.directory = directory

	return &Store{
		Directory:    directory,
		Appointments: appointments,
		Records:      records,
		Logs:         &LogStore{db: db},
		Sequencer:    seq,
	}
}

// findAppointment looks an appointment up by internal key or display identifier.
func findAppointment(ctx context.Context, tx *gorm.DB, id string) (*models.Appointment, error) {
	var apt models.Appointment
	err := tx.WithContext(ctx).Where("id = ? OR appointment_id = ?", id, id).Take(&apt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("Appointment not found")
	}
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
