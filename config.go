package main

// PipelineConfig is an immutable snapshot of every tunable pipeline
// parameter. A config value fully determines pipeline output for a given
// zone set; there is no hidden state. Pass it by value.
type PipelineConfig struct {
	UseDouglasPeucker bool    `json:"useDouglasPeucker"`
	Tolerance         float64 `json:"tolerance"` // degrees

	PreserveCurves      bool    `json:"preserveCurves"`
	CurveAngleThreshold float64 `json:"curveAngleThreshold"` // degrees off straight

	UseGridSnapping bool    `json:"useGridSnapping"`
	GridSize        float64 `json:"gridSize"` // degrees

	UseConvexHull bool `json:"useConvexHull"`

	UseCornerRounding bool    `json:"useCornerRounding"`
	CornerRadius      float64 `json:"cornerRadius"` // degrees

	UseOverlapClipping bool    `json:"useOverlapClipping"`
	ClipTolerance      float64 `json:"clipTolerance"` // degrees

	MergeOverlappingSameZone bool `json:"mergeOverlappingSameZone"`

	UseProximityMerging         bool    `json:"useProximityMerging"`
	ProximityMergeDistanceMeter float64 `json:"proximityMergeDistanceMeters"`

	UseDeduplication       bool    `json:"useDeduplication"`
	DeduplicationThreshold float64 `json:"deduplicationThreshold"` // overlap ratio 0..1
}

// Documented parameter ranges. Values outside a range are clamped rather
// than rejected so extreme UI inputs degrade instead of failing.
const (
	minTolerance = 0.00001
	maxTolerance = 0.001

	minCurveAngle = 10.0
	maxCurveAngle = 90.0

	minGridSize = 0.00001
	maxGridSize = 0.0002

	minCornerRadius = 0.00001
	maxCornerRadius = 0.0001

	minClipTolerance = 0.000001
	maxClipTolerance = 0.0001

	minProximityDistance = 10.0
	maxProximityDistance = 200.0

	minDedupThreshold = 0.80
	maxDedupThreshold = 1.0
)

// DefaultConfig returns the tuning used for city-scale zone sets:
// a light Douglas-Peucker pass with curve preservation, overlap clipping
// and near-duplicate removal on, the destructive stages off.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		UseDouglasPeucker:           true,
		Tolerance:                   0.00005, // ~5.5m
		PreserveCurves:              true,
		CurveAngleThreshold:         30.0,
		UseGridSnapping:             false,
		GridSize:                    0.00005,
		UseConvexHull:               false,
		UseCornerRounding:           false,
		CornerRadius:                0.00005,
		UseOverlapClipping:          true,
		ClipTolerance:               0.00001,
		MergeOverlappingSameZone:    false,
		UseProximityMerging:         false,
		ProximityMergeDistanceMeter: 50.0,
		UseDeduplication:            true,
		DeduplicationThreshold:      0.95,
	}
}

// Clamped returns a copy with every parameter forced into its documented
// range. Zero values for a disabled stage are left alone; an enabled stage
// always receives a usable value.
func (c PipelineConfig) Clamped() PipelineConfig {
	c.Tolerance = clamp(c.Tolerance, minTolerance, maxTolerance)
	c.CurveAngleThreshold = clamp(c.CurveAngleThreshold, minCurveAngle, maxCurveAngle)
	c.GridSize = clamp(c.GridSize, minGridSize, maxGridSize)
	c.CornerRadius = clamp(c.CornerRadius, minCornerRadius, maxCornerRadius)
	c.ClipTolerance = clamp(c.ClipTolerance, minClipTolerance, maxClipTolerance)
	c.ProximityMergeDistanceMeter = clamp(c.ProximityMergeDistanceMeter, minProximityDistance, maxProximityDistance)
	c.DeduplicationThreshold = clamp(c.DeduplicationThreshold, minDedupThreshold, maxDedupThreshold)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
