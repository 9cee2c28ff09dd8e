package main

import (
	"context"
	"sort"
	"sync"
	"time"
)

// StageObserver receives per-stage diagnostics. The geometric core never
// logs on its own; callers that want traces supply an observer.
type StageObserver interface {
	StageComplete(stage string, in, out int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) StageComplete(string, int, int, time.Duration) {}

// RunPipeline executes the full display pipeline synchronously:
// viewport pre-filter -> explode -> simplify -> overlap clip -> same-zone
// merge -> dedup -> draw-order sort. Deterministic for a given input and
// config; the input zones are never mutated.
func RunPipeline(zones []*Zone, viewport BBox, heldPermits []string, cfg PipelineConfig, obs StageObserver) []RenderPolygon {
	out, _ := RunPipelineContext(context.Background(), zones, viewport, heldPermits, cfg, obs)
	return out
}

// RunPipelineContext is RunPipeline with cancellation between stages.
// A cancelled run returns ctx.Err() and a nil polygon set.
func RunPipelineContext(ctx context.Context, zones []*Zone, viewport BBox, heldPermits []string, cfg PipelineConfig, obs StageObserver) ([]RenderPolygon, error) {
	if obs == nil {
		obs = noopObserver{}
	}
	cfg = cfg.Clamped()

	polygons := explodeZones(zones)

	margin := 0.25 * maxf(viewport.Width(), viewport.Height())
	polygons = timed(obs, "viewportFilter", polygons, func(in []RenderPolygon) []RenderPolygon {
		return filterByViewport(in, viewport, margin)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	polygons = timed(obs, "simplify", polygons, func(in []RenderPolygon) []RenderPolygon {
		out := make([]RenderPolygon, 0, len(in))
		for _, p := range in {
			ring := simplifyRing(p.Ring, cfg)
			if len(ring) < 3 {
				continue // polygon vanished
			}
			out = append(out, p.withRing(ring))
		}
		return out
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.UseOverlapClipping {
		polygons = timed(obs, "overlapClip", polygons, func(in []RenderPolygon) []RenderPolygon {
			return clipOverlaps(in, cfg.ClipTolerance)
		})
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	polygons = timed(obs, "merge", polygons, func(in []RenderPolygon) []RenderPolygon {
		return mergePolygons(in, cfg)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.UseDeduplication {
		polygons = timed(obs, "dedup", polygons, func(in []RenderPolygon) []RenderPolygon {
			return deduplicate(in, cfg.DeduplicationThreshold)
		})
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sortForRendering(polygons, heldPermits)
	return polygons, nil
}

// timed runs one stage and reports input/output counts to the observer
func timed(obs StageObserver, name string, in []RenderPolygon, fn func([]RenderPolygon) []RenderPolygon) []RenderPolygon {
	start := time.Now()
	out := fn(in)
	obs.StageComplete(name, len(in), len(out), time.Since(start))
	return out
}

// sortForRendering orders polygons for the renderer, which draws later
// entries above earlier ones: metered zones at the bottom, then zones the
// caller holds no permit for, then the caller's own permit zones on top.
// The sort is stable so pipeline order breaks ties.
func sortForRendering(polygons []RenderPolygon, heldPermits []string) {
	held := make(map[string]bool, len(heldPermits))
	for _, h := range heldPermits {
		held[h] = true
	}

	layer := func(p RenderPolygon) int {
		if p.ZoneType == ZoneMetered {
			return 0
		}
		if p.holdsPermit(held) {
			return 2
		}
		return 1
	}

	sort.SliceStable(polygons, func(i, j int) bool {
		return layer(polygons[i]) < layer(polygons[j])
	})
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Runner executes pipeline runs on a background goroutine. Starting a new
// run cancels the in-flight one, and only the newest run may publish its
// result: last writer wins at the hand-off boundary.
type Runner struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc

	resultMu sync.RWMutex
	result   []RenderPolygon
}

// RunRequest carries everything one pipeline run needs
type RunRequest struct {
	Zones       []*Zone
	Viewport    BBox
	HeldPermits []string
	Config      PipelineConfig
	Observer    StageObserver
	OnComplete  func([]RenderPolygon)
}

// Start launches a run, cancelling any run still in flight
func (r *Runner) Start(req RunRequest) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	go func() {
		defer cancel()
		polygons, err := RunPipelineContext(ctx, req.Zones, req.Viewport, req.HeldPermits, req.Config, req.Observer)
		if err != nil {
			return // superseded
		}

		r.mu.Lock()
		stale := gen != r.generation
		r.mu.Unlock()
		if stale {
			return
		}

		r.resultMu.Lock()
		r.result = polygons
		r.resultMu.Unlock()

		if req.OnComplete != nil {
			req.OnComplete(polygons)
		}
	}()
}

// Result returns the polygons from the most recent completed run
func (r *Runner) Result() []RenderPolygon {
	r.resultMu.RLock()
	defer r.resultMu.RUnlock()
	return r.result
}
