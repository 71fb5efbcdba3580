package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("report not found")

// GormStore persists report assignments. Every write is a single statement;
// there is no read-modify-write transaction.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d}
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	var r Report
	res := s.DB.WithContext(ctx).
		Raw(`SELECT * FROM reports.reports WHERE id = ? LIMIT 1`, id).
		Scan(&r)
	if res.Error != nil {
		return Report{}, fmt.Errorf("load report %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return Report{}, ErrNotFound
	}
	return r, nil
}

// ApplyAutomatic writes a derived assignment unless the report has been
// manually assigned. It reports whether the row was updated; false means
// the report is missing or an override got there first.
func (s *GormStore) ApplyAutomatic(ctx context.Context, id uuid.UUID, a Assignment) (bool, error) {
	res := s.DB.WithContext(ctx).Exec(`
		UPDATE reports.reports
		SET state = ?, constituency = ?, parliamentary_constituency = ?,
		    mla_name = ?, mp_name = ?, assignment_status = ?, updated_at = NOW()
		WHERE id = ? AND assignment_status <> ?`,
		a.State, a.Constituency, a.ParliamentaryConstituency,
		a.MLAName, a.MPName, string(a.Status),
		id, string(StatusManuallyAssigned))
	if res.Error != nil {
		return false, fmt.Errorf("apply automatic assignment to %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ApplyManual overwrites the assignment unconditionally.
func (s *GormStore) ApplyManual(ctx context.Context, id uuid.UUID, a Assignment) error {
	res := s.DB.WithContext(ctx).Exec(`
		UPDATE reports.reports
		SET state = ?, constituency = ?, parliamentary_constituency = ?,
		    mla_name = ?, mp_name = ?, assignment_status = ?, updated_at = NOW()
		WHERE id = ?`,
		a.State, a.Constituency, a.ParliamentaryConstituency,
		a.MLAName, a.MPName, string(a.Status),
		id)
	if res.Error != nil {
		return fmt.Errorf("apply manual assignment to %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns a count for every known status, zero included.
func (s *GormStore) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	names := make([]string, len(Statuses))
	out := make(map[Status]int64, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
		out[st] = 0
	}

	var rows []struct {
		AssignmentStatus string
		Count            int64
	}
	err := s.DB.WithContext(ctx).
		Raw(`SELECT assignment_status, COUNT(*) AS count
		     FROM reports.reports
		     WHERE assignment_status = ANY(?)
		     GROUP BY assignment_status`, pq.Array(names)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count reports by status: %w", err)
	}
	for _, r := range rows {
		out[Status(r.AssignmentStatus)] = r.Count
	}
	return out, nil
}

// Cursor marks a position in the (created_at, id) order used when paging
// through untouched reports. The zero Cursor is the start.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// After returns the cursor positioned just past r.
func After(r Report) Cursor {
	return Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == uuid.Nil
}

// ListUntouched returns up to limit pending reports whose location was
// never resolved, strictly after the cursor in (created_at, id) order. A
// limit <= 0 means no limit.
func (s *GormStore) ListUntouched(ctx context.Context, after Cursor, limit int) ([]Report, error) {
	q := `SELECT * FROM reports.reports
	      WHERE assignment_status = ? AND state = ?`
	args := []interface{}{string(StatusPendingManual), PendingAssignment}
	if !after.IsZero() {
		q += ` AND (created_at, id) > (?, ?)`
		args = append(args, after.CreatedAt, after.ID)
	}
	q += ` ORDER BY created_at ASC, id ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var out []Report
	if err := s.DB.WithContext(ctx).Raw(q, args...).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list untouched reports: %w", err)
	}
	return out, nil
}
