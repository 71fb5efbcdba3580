package representatives

import (
	"time"

	"github.com/google/uuid"
)

// MLA is one row of the assembly representative reference table. The table
// is maintained outside this service; it is only ever read here and by the
// seed tool.
type MLA struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	State        string    `gorm:"not null;index:idx_mla_seat" json:"state"`
	Constituency string    `gorm:"not null;index:idx_mla_seat" json:"constituency"`
	Name         string    `gorm:"not null" json:"name"`
	Party        string    `json:"party"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MP is one row of the parliamentary representative reference table.
type MP struct {
	ID                        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	State                     string    `gorm:"not null;index:idx_mp_seat" json:"state"`
	ParliamentaryConstituency string    `gorm:"not null;index:idx_mp_seat" json:"parliamentary_constituency"`
	Name                      string    `gorm:"not null" json:"name"`
	Party                     string    `json:"party"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (MLA) TableName() string { return "reference.mlas" }
func (MP) TableName() string  { return "reference.mps" }

// Record is what a lookup hands back to callers.
type Record struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}
