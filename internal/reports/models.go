package reports

import (
	"time"

	"github.com/google/uuid"
)

// PendingAssignment is the placeholder for location fields that have not
// been resolved.
const PendingAssignment = "Pending Assignment"

// Status is the assignment lifecycle of a report.
type Status string

const (
	StatusPendingManual    Status = "pending_manual"
	StatusAutoAssigned     Status = "auto_assigned"
	StatusManuallyAssigned Status = "manually_assigned"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAutoAssigned, StatusPendingManual, StatusManuallyAssigned}

// Report carries the constituency assignment of a civic issue report. The
// rest of the report (title, media, author) lives with the reporting
// service; this table only holds what resolution reads and writes.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`

	State                     string `gorm:"not null;default:'Pending Assignment';index" json:"state"`
	Constituency              string `gorm:"not null;default:'Pending Assignment'" json:"constituency"`
	ParliamentaryConstituency string `gorm:"not null;default:'Pending Assignment'" json:"parliamentary_constituency"`
	MLAName                   string `gorm:"column:mla_name;not null;default:''" json:"mla_name"`
	MPName                    string `gorm:"column:mp_name;not null;default:''" json:"mp_name"`
	AssignmentStatus          Status `gorm:"type:varchar(32);not null;default:'pending_manual';index" json:"assignment_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string { return "reports.reports" }

// Assignment returns the mutable assignment fields of r.
func (r Report) Assignment() Assignment {
	return Assignment{
		State:                     r.State,
		Constituency:              r.Constituency,
		ParliamentaryConstituency: r.ParliamentaryConstituency,
		MLAName:                   r.MLAName,
		MPName:                    r.MPName,
		Status:                    r.AssignmentStatus,
	}
}

// Untouched reports whether automatic resolution has never filled in a
// location for r.
func (r Report) Untouched() bool {
	return r.AssignmentStatus == StatusPendingManual && r.State == PendingAssignment
}

// Assignment is the set of fields written together by resolution and
// override.
type Assignment struct {
	State                     string `json:"state"`
	Constituency              string `json:"constituency"`
	ParliamentaryConstituency string `json:"parliamentary_constituency"`
	MLAName                   string `json:"mla_name"`
	MPName                    string `json:"mp_name"`
	Status                    Status `json:"assignment_status"`
}

// Pending is the assignment of a freshly created report.
func Pending() Assignment {
	return Assignment{
		State:                     PendingAssignment,
		Constituency:              PendingAssignment,
		ParliamentaryConstituency: PendingAssignment,
		Status:                    StatusPendingManual,
	}
}
