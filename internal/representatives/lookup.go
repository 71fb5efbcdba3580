package representatives

import (
	"context"

	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"go.uber.org/zap"
)

// Lookup wraps a Directory for callers that treat a failed read exactly
// like a missing row. Errors are logged and counted, never returned, so one
// failing table cannot stop a lookup against the other.
type Lookup struct {
	Dir Directory
}

func NewLookup(dir Directory) Lookup {
	return Lookup{Dir: dir}
}

func (l Lookup) MLA(ctx context.Context, state, constituency string) (Record, bool) {
	if l.Dir == nil {
		return Record{}, false
	}
	rec, ok, err := l.Dir.FindMLA(ctx, state, constituency)
	return observe("mla", state, constituency, rec, ok, err)
}

func (l Lookup) MP(ctx context.Context, state, parliamentaryConstituency string) (Record, bool) {
	if l.Dir == nil {
		return Record{}, false
	}
	rec, ok, err := l.Dir.FindMP(ctx, state, parliamentaryConstituency)
	return observe("mp", state, parliamentaryConstituency, rec, ok, err)
}

func observe(table, state, seat string, rec Record, ok bool, err error) (Record, bool) {
	switch {
	case err != nil:
		metrics.Lookups.WithLabelValues(table, "error").Inc()
		zap.L().Named("representatives").Warn("lookup failed, treating as not found",
			zap.String("table", table),
			zap.String("state", state),
			zap.String("seat", seat),
			zap.Error(err))
		return Record{}, false
	case !ok:
		metrics.Lookups.WithLabelValues(table, "not_found").Inc()
		return Record{}, false
	default:
		metrics.Lookups.WithLabelValues(table, "found").Inc()
		return rec, true
	}
}
