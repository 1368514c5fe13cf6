package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-app-server/internal/models"
)

// AppointmentCounter names the sequence behind appointment display identifiers.
const AppointmentCounter = "appointment"

// Sequencer hands out monotonically increasing values per named counter.
// The value lives only in the database so several service instances can share it.
type Sequencer struct {
	db *gorm.DB
}

// Next increments the counter and returns the new value. Passing a
// transaction keeps the counter row locked until that transaction ends; nil
// runs the increment in its own transaction.
func (s *Sequencer) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	if tx == nil {
		var n int64
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = s.Next(ctx, tx, name)
			return err
		})
		return n, err
	}

	tx = tx.WithContext(ctx)
	seed := models.Counter{Name: name, Seq: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seq": gorm.Expr("? + 1", clause.Column{Table: "counters", Name: "seq"}),
		}),
	}).Create(&seed).Error
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}

	var counter models.Counter
	if err := tx.Where("name = ?", name).Take(&counter).Error; err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}
	return counter.Seq, nil
}

// FormatAppointmentID renders a sequence value as a display identifier.
func FormatAppointmentID(n int64) string {
	return fmt.Sprintf("APT-%04d", n)
}
