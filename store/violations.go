// Package store is the gorm query layer over the violations table. The stats
// engine never touches SQL directly; it consumes records and counts through
// these methods.
package store

import (
	"context"
	"fmt"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/stats"
	"gorm.io/gorm"
)

// ViolationStore runs queries against the violations table.
type ViolationStore struct {
	db *gorm.DB
}

// New creates a ViolationStore on top of an open gorm connection.
func New(db *gorm.DB) *ViolationStore {
	return &ViolationStore{db: db}
}

// Create inserts a violation.
func (s *ViolationStore) Create(ctx context.Context, v *models.Violation) error {
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create violation: %w", err)
	}
	return nil
}

// FindAll returns every violation ordered by date then id.
func (s *ViolationStore) FindAll(ctx context.Context) ([]models.Violation, error) {
	var out []models.Violation
	if err := s.db.WithContext(ctx).Order("date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find violations: %w", err)
	}
	return out, nil
}

// FindInRange returns violations whose date falls inside the window,
// inclusive both ends. The date column holds YYYY-MM-DD strings, so a string
// BETWEEN is an exact chronological filter.
func (s *ViolationStore) FindInRange(ctx context.Context, w stats.Window) ([]models.Violation, error) {
	var out []models.Violation
	err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", w.FromString(), w.ToString()).
		Order("date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find violations in range: %w", err)
	}
	return out, nil
}

// CountInRange counts violations inside the window.
func (s *ViolationStore) CountInRange(ctx context.Context, w stats.Window) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Violation{}).
		Where("date BETWEEN ? AND ?", w.FromString(), w.ToString()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count violations in range: %w", err)
	}
	return n, nil
}

// CountPair counts two windows in a single statement so both totals come from
// one snapshot; a write landing between two separate counts could otherwise
// make "current" and "previous" disagree about overlapping data.
func (s *ViolationStore) CountPair(ctx context.Context, current, previous stats.Window) (cur, prev int64, err error) {
	var row struct {
		Current  int64
		Previous int64
	}
	err = s.db.WithContext(ctx).Model(&models.Violation{}).
		Select(
			"SUM(CASE WHEN date BETWEEN ? AND ? THEN 1 ELSE 0 END) AS current, "+
				"SUM(CASE WHEN date BETWEEN ? AND ? THEN 1 ELSE 0 END) AS previous",
			current.FromString(), current.ToString(),
			previous.FromString(), previous.ToString(),
		).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count violation pair: %w", err)
	}
	return row.Current, row.Previous, nil
}

// FindByStreetName returns violations on a street, case-insensitively, with
// an optional date range.
func (s *ViolationStore) FindByStreetName(ctx context.Context, streetName string, w *stats.Window) ([]models.Violation, error) {
	q := s.db.WithContext(ctx).Where("street_name ILIKE ?", streetName)
	if w != nil {
		q = q.Where("date BETWEEN ? AND ?", w.FromString(), w.ToString())
	}
	var out []models.Violation
	if err := q.Order("date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find violations by street: %w", err)
	}
	return out, nil
}

// FindByViolationType returns violations of one type with an optional range.
func (s *ViolationStore) FindByViolationType(ctx context.Context, t models.ViolationType, w *stats.Window) ([]models.Violation, error) {
	q := s.db.WithContext(ctx).Where("violation_type = ?", t)
	if w != nil {
		q = q.Where("date BETWEEN ? AND ?", w.FromString(), w.ToString())
	}
	var out []models.Violation
	if err := q.Order("date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find violations by type: %w", err)
	}
	return out, nil
}

// FindByLocation returns violations recorded at an exact coordinate pair.
func (s *ViolationStore) FindByLocation(ctx context.Context, lat, lng float64) ([]models.Violation, error) {
	var out []models.Violation
	err := s.db.WithContext(ctx).
		Where("latitude = ? AND longitude = ?", lat, lng).
		Order("date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find violations by location: %w", err)
	}
	return out, nil
}

// DeleteAll wipes the table. Used by cmd/cleanup only.
func (s *ViolationStore) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Violation{}).Error
	if err != nil {
		return fmt.Errorf("delete violations: %w", err)
	}
	return nil
}
