package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	globalZones  []*Zone
	zonesMutex   sync.RWMutex
	lookupEngine *ZoneLookupEngine
)

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// logObserver prints per-stage reduction stats the way the conversion
// backend reported them
type logObserver struct{}

func (logObserver) StageComplete(stage string, in, out int, elapsed time.Duration) {
	metricsObserver{}.StageComplete(stage, in, out, elapsed)
	if in == 0 {
		return
	}
	reduction := (1 - float64(out)/float64(in)) * 100
	log.Printf("   %-14s %4d -> %4d polygons (%.1f%% reduction, %s)\n", stage, in, out, reduction, elapsed.Round(time.Microsecond))
}

type renderRequest struct {
	Viewport    BBox           `json:"viewport"`
	HeldPermits []string       `json:"heldPermits"`
	Config      PipelineConfig `json:"config"`
	UseDefaults bool           `json:"useDefaults,omitempty"`
}

type renderPolygonResponse struct {
	ZoneID              string  `json:"zoneId"`
	ZoneCode            string  `json:"zoneCode,omitempty"`
	ZoneType            string  `json:"zoneType"`
	MultiPermit         bool    `json:"multiPermit,omitempty"`
	OriginalVertexCount int     `json:"originalVertexCount"`
	Ring                []Point `json:"ring"`
}

// POST /render - run the display pipeline for a viewport
func renderHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Render request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := req.Config
	if req.UseDefaults {
		cfg = DefaultConfig()
	}

	zonesMutex.RLock()
	zones := globalZones
	zonesMutex.RUnlock()

	log.Printf("   Viewport: (%.5f, %.5f) to (%.5f, %.5f)\n",
		req.Viewport.MinLat, req.Viewport.MinLng, req.Viewport.MaxLat, req.Viewport.MaxLng)
	log.Printf("   Zones loaded: %d\n", len(zones))

	start := time.Now()
	polygons, err := RunPipelineContext(r.Context(), zones, req.Viewport, req.HeldPermits, cfg, logObserver{})
	if err != nil {
		log.Printf("⚠️  Pipeline run cancelled: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	pipelineRunsTotal.Inc()
	pipelineDurationMs.Observe(float64(elapsed.Microseconds()) / 1000.0)

	log.Printf("✅ Pipeline finished: %d polygons in %s\n", len(polygons), elapsed.Round(time.Millisecond))
	log.Println("========================================")

	resp := make([]renderPolygonResponse, 0, len(polygons))
	for _, p := range polygons {
		resp = append(resp, renderPolygonResponse{
			ZoneID:              p.ZoneID,
			ZoneCode:            p.ZoneCode,
			ZoneType:            p.ZoneType.String(),
			MultiPermit:         p.MultiPermit,
			OriginalVertexCount: p.OriginalCount,
			Ring:                p.Ring,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"polygons":   resp,
		"count":      len(resp),
		"durationMs": elapsed.Milliseconds(),
	})
}

type findZoneResponse struct {
	Found                         bool     `json:"found"`
	ZoneID                        string   `json:"zoneId,omitempty"`
	DisplayName                   string   `json:"displayName,omitempty"`
	ZoneType                      string   `json:"zoneType,omitempty"`
	PermitArea                    string   `json:"permitArea,omitempty"`
	OverlappingZoneIDs            []string `json:"overlappingZoneIds,omitempty"`
	Confidence                    string   `json:"confidence"`
	NearestBoundaryDistanceMeters float64  `json:"nearestBoundaryDistanceMeters"`
}

// POST /findZone - resolve which zone contains a point
func findZoneHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var point Point
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		log.Printf("❌ Invalid findZone body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := lookupEngine.FindZone(point)
	recordLookup(result)

	resp := findZoneResponse{
		Found:                         result.Known(),
		Confidence:                    result.Confidence.String(),
		NearestBoundaryDistanceMeters: result.NearestBoundaryDistanceMeters,
	}
	if result.Known() {
		resp.ZoneID = result.PrimaryZone.ID
		resp.DisplayName = result.PrimaryZone.DisplayName
		resp.ZoneType = result.PrimaryZone.Type.String()
		resp.PermitArea = result.PrimaryZone.PermitArea
		for _, z := range result.OverlappingZones {
			resp.OverlappingZoneIDs = append(resp.OverlappingZoneIDs, z.ID)
		}
		log.Printf("📍 findZone (%.5f, %.5f) -> %s [%s]\n", point.Lat, point.Lng, result.PrimaryZone.ID, result.Confidence)
	} else {
		log.Printf("📍 findZone (%.5f, %.5f) -> unknown area\n", point.Lat, point.Lng)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	zonesMutex.RLock()
	numZones := len(globalZones)
	zonesMutex.RUnlock()

	status := "ready"
	if numZones == 0 {
		status = "waiting for zone data"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   status,
		"numZones": numZones,
	})
}

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	dataPath := os.Getenv("ZONE_DATA_PATH")
	if dataPath == "" {
		dataPath = "sf_parking_zones.json"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("========================================")
	log.Println("🅿️  Parking Zone Geometry Server")
	log.Println("========================================")
	log.Printf("Loading zone data from %s...\n", dataPath)

	zones, err := LoadZonesFile(dataPath)
	if err != nil {
		log.Printf("⚠️  Could not load zone data: %v\n", err)
		log.Println("   Starting with an empty zone set")
		zones = nil
	} else {
		totalRings := 0
		for _, z := range zones {
			totalRings += len(z.Rings)
		}
		log.Printf("✅ Loaded %d zones (%d polygons)\n", len(zones), totalRings)
	}

	zonesMutex.Lock()
	globalZones = zones
	zonesMutex.Unlock()
	lookupEngine = NewZoneLookupEngine(zones)

	http.HandleFunc("/render", corsMiddleware(renderHandler))
	http.HandleFunc("/findZone", corsMiddleware(findZoneHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))
	http.Handle("/metrics", metricsHandler())

	log.Printf("Server starting on :%s\n", port)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /render     - Run the display pipeline for a viewport")
	log.Println("  POST /findZone   - Resolve which zone contains a point")
	log.Println("  GET  /health     - Check server status")
	log.Println("  GET  /metrics    - Prometheus metrics")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
