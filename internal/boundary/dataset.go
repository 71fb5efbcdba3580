package boundary

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"go.uber.org/zap"
)

// Dataset holds both seat collections. A nil collection failed to load.
type Dataset struct {
	Assembly      *Collection
	Parliamentary *Collection
}

// Status describes the outcome of the startup load.
type Status struct {
	Loaded                bool   `json:"loaded"`
	AssemblyFeatures      int    `json:"assembly_features"`
	ParliamentaryFeatures int    `json:"parliamentary_features"`
	Error                 string `json:"error,omitempty"`
}

var (
	current  atomic.Pointer[Dataset]
	loadErr  atomic.Value // string
	loadOnce sync.Once
)

// Current returns the published dataset, or nil if none is published yet.
func Current() *Dataset {
	return current.Load()
}

// Publish makes ds visible to all readers.
func Publish(ds *Dataset) {
	current.Store(ds)
}

func CurrentStatus() Status {
	ds := Current()
	st := Status{
		Loaded:                ds != nil && (ds.Assembly != nil || ds.Parliamentary != nil),
		AssemblyFeatures:      collectionLen(ds, Assembly),
		ParliamentaryFeatures: collectionLen(ds, Parliamentary),
	}
	if s, ok := loadErr.Load().(string); ok {
		st.Error = s
	}
	return st
}

// Load reads both collections. Each collection loads independently; the
// returned error joins whatever failed and the dataset keeps what succeeded.
func Load(cfg config.BoundaryConfig) (*Dataset, error) {
	ds := &Dataset{}
	var errs []error

	ac, err := LoadFile(Assembly, cfg.AssemblyPath, cfg.AssemblyKeys)
	if err != nil {
		errs = append(errs, err)
	} else {
		ds.Assembly = ac
	}

	pc, err := LoadFile(Parliamentary, cfg.ParliamentaryPath, cfg.ParliamentaryKeys)
	if err != nil {
		errs = append(errs, err)
	} else {
		ds.Parliamentary = pc
	}

	return ds, errors.Join(errs...)
}

// LoadAsync loads the boundary files once in the background and publishes
// the result. Failures are logged here, once; readers see empty matches.
// The returned channel closes when loading finishes; later calls return an
// already closed channel.
func LoadAsync(cfg config.BoundaryConfig) <-chan struct{} {
	done := make(chan struct{})
	started := false
	loadOnce.Do(func() {
		started = true
		go func() {
			defer close(done)
			log := zap.L().Named("boundary")

			ds, err := Load(cfg)
			if err != nil {
				loadErr.Store(err.Error())
				log.Error("boundary data unavailable, automatic constituency resolution degraded",
					zap.Error(err))
			}
			Publish(ds)
			metrics.BoundaryFeatures.WithLabelValues(string(Assembly)).Set(float64(ds.Assembly.Len()))
			metrics.BoundaryFeatures.WithLabelValues(string(Parliamentary)).Set(float64(ds.Parliamentary.Len()))
			log.Info("boundary data published",
				zap.Int("assembly_features", ds.Assembly.Len()),
				zap.Int("parliamentary_features", ds.Parliamentary.Len()))
		}()
	})
	if !started {
		close(done)
	}
	return done
}

func collectionLen(ds *Dataset, kind Kind) int {
	if ds == nil {
		return 0
	}
	if kind == Assembly {
		return ds.Assembly.Len()
	}
	return ds.Parliamentary.Len()
}
