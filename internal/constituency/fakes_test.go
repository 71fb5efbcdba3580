package constituency_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/constituency"
	"github.com/EmpoweredVote/constituency-core/internal/reports"
	"github.com/EmpoweredVote/constituency-core/internal/representatives"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// fakeStore keeps reports in memory and applies the same conditional
// write rule as the Postgres store.
type fakeStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]reports.Report
	writes  int
	clock   time.Time

	// onApply runs at the start of ApplyAutomatic, before the guard.
	onApply func(id uuid.UUID)
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reports: map[uuid.UUID]reports.Report{},
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// add inserts a freshly created report.
func (f *fakeStore) add(lat, lng float64) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = f.clock.Add(time.Minute)
	p := reports.Pending()
	r := reports.Report{
		ID:                        uuid.New(),
		Latitude:                  lat,
		Longitude:                 lng,
		State:                     p.State,
		Constituency:              p.Constituency,
		ParliamentaryConstituency: p.ParliamentaryConstituency,
		AssignmentStatus:          p.Status,
		CreatedAt:                 f.clock,
		UpdatedAt:                 f.clock,
	}
	f.reports[r.ID] = r
	return r.ID
}

func (f *fakeStore) set(id uuid.UUID, a reports.Assignment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reports[id]
	r.State, r.Constituency, r.ParliamentaryConstituency = a.State, a.Constituency, a.ParliamentaryConstituency
	r.MLAName, r.MPName, r.AssignmentStatus = a.MLAName, a.MPName, a.Status
	f.reports[id] = r
}

func (f *fakeStore) assignment(id uuid.UUID) reports.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[id].Assignment()
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (reports.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ApplyAutomatic(_ context.Context, id uuid.UUID, a reports.Assignment) (bool, error) {
	if f.onApply != nil {
		f.onApply(id)
	}
	f.mu.Lock()
	r, ok := f.reports[id]
	f.mu.Unlock()
	if !ok || r.AssignmentStatus == reports.StatusManuallyAssigned {
		return false, nil
	}
	f.set(id, a)
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	return true, nil
}

func (f *fakeStore) ApplyManual(_ context.Context, id uuid.UUID, a reports.Assignment) error {
	f.mu.Lock()
	_, ok := f.reports[id]
	f.mu.Unlock()
	if !ok {
		return reports.ErrNotFound
	}
	f.set(id, a)
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	return nil
}

// CountByStatus omits statuses with no rows, like a GROUP BY would.
func (f *fakeStore) CountByStatus(context.Context) (map[reports.Status]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[reports.Status]int64{}
	for _, r := range f.reports {
		out[r.AssignmentStatus]++
	}
	return out, nil
}

func (f *fakeStore) ListUntouched(_ context.Context, after reports.Cursor, limit int) ([]reports.Report, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []reports.Report
	for _, r := range f.reports {
		if r.Untouched() && (after.IsZero() || cursorLess(after, reports.After(r))) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return cursorLess(reports.After(out[i]), reports.After(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// cursorLess orders like the row comparison (created_at, id) in Postgres.
func cursorLess(a, b reports.Cursor) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// fakeLocker is an in-process stand-in for the advisory lock.
type fakeLocker struct {
	mu   sync.Mutex
	held bool
	err  error
}

func (l *fakeLocker) TryLock(context.Context, string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
	}, true, nil
}

// brokenDirectory fails every read.
type brokenDirectory struct{}

func (brokenDirectory) FindMLA(context.Context, string, string) (representatives.Record, bool, error) {
	return representatives.Record{}, false, errors.New("mla table unavailable")
}

func (brokenDirectory) FindMP(context.Context, string, string) (representatives.Record, bool, error) {
	return representatives.Record{}, false, errors.New("mp table unavailable")
}

func box(minLng, minLat, maxLng, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLng, minLat}, {maxLng, minLat}, {maxLng, maxLat}, {minLng, maxLat}, {minLng, minLat},
	}}
}

func feature(state, name string, p orb.Polygon) boundary.Feature {
	return boundary.Feature{State: state, Name: name, Geometry: p, Bound: p.Bound()}
}

// Coordinates used across tests.
const (
	kandhamalLat, kandhamalLng = 21.0, 85.0 // inside AC "Kandhamal SC" and PC "Kandhamal"
	pcOnlyLat, pcOnlyLng       = 20.2, 84.2 // inside PC "Kandhamal" only
	outsideLat, outsideLng     = 10.0, 70.0
)

// odisha has one assembly seat, a neighbour, and the enclosing
// parliamentary seat.
func odisha() *boundary.Dataset {
	return &boundary.Dataset{
		Assembly: &boundary.Collection{Kind: boundary.Assembly, Features: []boundary.Feature{
			feature("Odisha", "Kandhamal SC", box(84.5, 20.5, 85.5, 21.5)),
			feature("Odisha", "Phulbani", box(85.5, 20.5, 86.0, 21.5)),
		}},
		Parliamentary: &boundary.Collection{Kind: boundary.Parliamentary, Features: []boundary.Feature{
			feature("Odisha", "Kandhamal", box(84.0, 20.0, 86.0, 22.0)),
		}},
	}
}

var (
	mlaKandhamal = representatives.Row{State: "Odisha", Seat: "Kandhamal", Name: "A. Kumar", Party: "BJD"}
	mpKandhamal  = representatives.Row{State: "Odisha", Seat: "Kandhamal", Name: "B. Das", Party: "BJP"}
)

func lookup(mlas, mps []representatives.Row) representatives.Lookup {
	return representatives.NewLookup(representatives.NewMemoryDirectory(mlas, mps))
}

func newService(t *testing.T, store *fakeStore, reps constituency.Representatives, opts constituency.Options) *constituency.Service {
	t.Helper()
	if opts.Locate == nil {
		opts.Locate = odisha().Locate
	}
	return constituency.NewService(store, reps, opts)
}
