package representatives

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Directory answers representative lookups. found is false when no row
// matches; err is reserved for data-access failures.
type Directory interface {
	FindMLA(ctx context.Context, state, constituency string) (rec Record, found bool, err error)
	FindMP(ctx context.Context, state, parliamentaryConstituency string) (rec Record, found bool, err error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE/ILIKE metacharacters so s matches only itself
// when used with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GormDirectory reads the reference tables from Postgres.
type GormDirectory struct {
	DB *gorm.DB
}

func (d GormDirectory) FindMLA(ctx context.Context, state, constituency string) (Record, bool, error) {
	return d.find(ctx, `
		SELECT name, COALESCE(party, '') AS party
		FROM reference.mlas
		WHERE state ILIKE ? ESCAPE '\'
		  AND constituency ILIKE ? ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT 1
	`, state, constituency)
}

func (d GormDirectory) FindMP(ctx context.Context, state, parliamentaryConstituency string) (Record, bool, error) {
	return d.find(ctx, `
		SELECT name, COALESCE(party, '') AS party
		FROM reference.mps
		WHERE state ILIKE ? ESCAPE '\'
		  AND parliamentary_constituency ILIKE ? ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT 1
	`, state, parliamentaryConstituency)
}

func (d GormDirectory) find(ctx context.Context, query, state, seat string) (Record, bool, error) {
	state, seat = strings.TrimSpace(state), strings.TrimSpace(seat)
	if state == "" || seat == "" {
		return Record{}, false, nil
	}

	var rec Record
	res := d.DB.WithContext(ctx).Raw(query, EscapeLike(state), EscapeLike(seat)).Scan(&rec)
	if res.Error != nil {
		return Record{}, false, fmt.Errorf("representative lookup failed: %w", res.Error)
	}
	if res.RowsAffected == 0 || rec.Name == "" {
		return Record{}, false, nil
	}
	return rec, true, nil
}
