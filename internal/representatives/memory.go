package representatives

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// MemoryDirectory serves lookups from rows held in memory. Used by the
// offline locate tool and by tests. Safe for concurrent reads once built.
type MemoryDirectory struct {
	mlas map[string]Record
	mps  map[string]Record
}

func NewMemoryDirectory(mlas, mps []Row) *MemoryDirectory {
	d := &MemoryDirectory{
		mlas: make(map[string]Record, len(mlas)),
		mps:  make(map[string]Record, len(mps)),
	}
	for _, r := range mlas {
		d.mlas[seatKey(r.State, r.Seat)] = Record{Name: r.Name, Party: r.Party}
	}
	for _, r := range mps {
		d.mps[seatKey(r.State, r.Seat)] = Record{Name: r.Name, Party: r.Party}
	}
	return d
}

func (d *MemoryDirectory) FindMLA(_ context.Context, state, constituency string) (Record, bool, error) {
	rec, ok := d.mlas[seatKey(state, constituency)]
	return rec, ok, nil
}

func (d *MemoryDirectory) FindMP(_ context.Context, state, parliamentaryConstituency string) (Record, bool, error) {
	rec, ok := d.mps[seatKey(state, parliamentaryConstituency)]
	return rec, ok, nil
}

// seatKey case-folds both parts. A Caser is stateful, so each call builds
// its own.
func seatKey(state, seat string) string {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(state)) + "\x00" + fold.String(strings.TrimSpace(seat))
}
