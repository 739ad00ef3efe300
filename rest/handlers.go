package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/mux"

	"github.com/elimelt/ha-redis/lib/keyspace"
	"github.com/elimelt/ha-redis/lib/loadgen"
)

const (
	defaultTTLSeconds = 300
	healthCheckKey    = "_health_check"
)

// respondJSON writes data as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError reports a failed operation.
func respondError(w http.ResponseWriter, err error) {
	// an under-acknowledged write is the signal the topologies are compared
	// on, so it gets its own log line
	if keyspace.IsInsufficientAcks(err) {
		log.Warnf("write under-acknowledged: %v", err)
	}
	respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}

// --------------------------------------------------------------------------
// Service routes
// --------------------------------------------------------------------------

// handleHealth pings the backing store and round-trips a short-lived
// health key through it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.keyspace.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	test := "failed"
	if err := s.keyspace.Set(ctx, healthCheckKey, "ok", 10*time.Second); err == nil {
		if value, loaded, err := s.keyspace.Get(ctx, healthCheckKey); err == nil && loaded && value == "ok" {
			test = "passed"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"message": "Connected to backing store",
		"test":    test,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.recorder.Snapshot())
}

func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	s.recorder.Reset()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Statistics reset",
		"stats":   s.recorder.Snapshot(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w, true)
}

// --------------------------------------------------------------------------
// Write routes
// --------------------------------------------------------------------------

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
		TTL   int    `json:"ttl"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomKey()
	}
	if req.Value == "" {
		req.Value = loadgen.RandomString(20)
	}
	if req.TTL == 0 {
		req.TTL = defaultTTLSeconds
	}

	start := time.Now()
	err := s.keyspace.Set(r.Context(), req.Key, req.Value, time.Duration(req.TTL)*time.Second)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "SET",
		"key":       req.Key,
		"value":     req.Value,
		"ttl":       req.TTL,
	})
}

func (s *Server) handleIncr(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomCounterKey()
	}

	start := time.Now()
	value, err := s.keyspace.Incr(r.Context(), req.Key)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "INCR",
		"key":       req.Key,
		"value":     value,
	})
}

func (s *Server) handleLPush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomListKey()
	}
	if req.Value == "" {
		req.Value = loadgen.RandomString(20)
	}

	start := time.Now()
	err := s.keyspace.LPush(r.Context(), req.Key, req.Value)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "LPUSH",
		"key":       req.Key,
		"value":     req.Value,
	})
}

func (s *Server) handleSAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomSetKey()
	}
	if req.Value == "" {
		req.Value = loadgen.RandomString(20)
	}

	start := time.Now()
	added, err := s.keyspace.SAdd(r.Context(), req.Key, req.Value)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "SADD",
		"key":       req.Key,
		"value":     req.Value,
		"added":     added,
	})
}

func (s *Server) handleHSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Field string `json:"field"`
		Value string `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomHashKey()
	}
	if req.Field == "" {
		req.Field = loadgen.RandomString(10)
	}
	if req.Value == "" {
		req.Value = loadgen.RandomString(20)
	}

	start := time.Now()
	created, err := s.keyspace.HSet(r.Context(), req.Key, req.Field, req.Value)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "HSET",
		"key":       req.Key,
		"field":     req.Field,
		"value":     req.Value,
		"created":   created,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Key == "" {
		req.Key = loadgen.RandomKey()
	}

	start := time.Now()
	err := s.keyspace.Delete(r.Context(), req.Key)
	s.recorder.RecordWrite(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "DEL",
		"key":       req.Key,
	})
}

// --------------------------------------------------------------------------
// Read routes
// --------------------------------------------------------------------------

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		key = loadgen.RandomKey()
	}

	start := time.Now()
	value, loaded, err := s.keyspace.Get(r.Context(), key)
	s.recorder.RecordRead(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "GET",
		"key":       key,
		"value":     value,
		"found":     loaded,
	})
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		key = loadgen.RandomKey()
	}

	start := time.Now()
	exists, err := s.keyspace.Exists(r.Context(), key)
	s.recorder.RecordRead(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "EXISTS",
		"key":       key,
		"exists":    exists,
	})
}

func (s *Server) handleLRange(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		key = loadgen.RandomListKey()
	}

	start := 0
	stop := 10
	if v := r.URL.Query().Get("start"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			start = parsed
		}
	}
	if v := r.URL.Query().Get("stop"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			stop = parsed
		}
	}

	begin := time.Now()
	values, err := s.keyspace.LRange(r.Context(), key, int64(start), int64(stop))
	s.recorder.RecordRead(err == nil, time.Since(begin))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "LRANGE",
		"key":       key,
		"start":     start,
		"stop":      stop,
		"values":    values,
		"count":     len(values),
	})
}

func (s *Server) handleSMembers(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		key = loadgen.RandomSetKey()
	}

	start := time.Now()
	members, err := s.keyspace.SMembers(r.Context(), key)
	s.recorder.RecordRead(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"operation": "SMEMBERS",
		"key":       key,
		"members":   members,
		"count":     len(members),
	})
}

func (s *Server) handleHGetAll(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		key = loadgen.RandomHashKey()
	}

	start := time.Now()
	fields, err := s.keyspace.HGetAll(r.Context(), key)
	s.recorder.RecordRead(err == nil, time.Since(start))

	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"operation":  "HGETALL",
		"key":        key,
		"hash":       fields,
		"fieldCount": len(fields),
	})
}

// --------------------------------------------------------------------------
// Load generation
// --------------------------------------------------------------------------

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var cfg loadgen.Config
	_ = json.NewDecoder(r.Body).Decode(&cfg)

	// latencies go straight into the recorder's histogram, counters are
	// folded in below
	report := loadgen.Run(r.Context(), s.keyspace, cfg, s.recorder.Latency())

	s.recorder.AddBatch(report.Reads, report.Writes, report.Successful, report.Failed)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Load generation completed",
		"results": report,
	})
}
