package rover_nav

import (
	"expvar"
	"log"
	"net/http"
)

// VizConfig controls the optional expvar endpoint used for live plotting.
type VizConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// VizMetrics exposes live sensor and wheel values via expvar.
type VizMetrics struct {
	input  *expvar.Map
	output *expvar.Map
}

var (
	vizInput  = expvar.NewMap("input")
	vizOutput = expvar.NewMap("output")
)

// StartViz starts an HTTP server exposing /debug/vars for plotting.
func StartViz(cfg VizConfig) (*VizMetrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7070"
	}

	server := &http.Server{Addr: cfg.Addr, Handler: http.DefaultServeMux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("viz server error: %v", err)
		}
	}()

	return newVizMetrics(), nil
}

func newVizMetrics() *VizMetrics {
	return &VizMetrics{input: vizInput, output: vizOutput}
}

// Update publishes the latest tick report.
func (v *VizMetrics) Update(r TickReport) {
	if v == nil {
		return
	}
	setInt(v.input, "left", int64(r.Sample.Left))
	setInt(v.input, "middle", int64(r.Sample.Middle))
	setInt(v.input, "right", int64(r.Sample.Right))
	setInt(v.input, "distance", int64(r.Distance))
	setString(v.input, "bits", r.Pattern.Bits())
	setInt(v.output, "left", int64(r.Command.Left))
	setInt(v.output, "right", int64(r.Command.Right))
	setInt(v.output, "stage", int64(r.Stage))
	setString(v.output, "action", r.Action.String())
	setString(v.output, "phase", r.Phase)
}

// setInt updates an expvar.Int stored inside a map.
func setInt(m *expvar.Map, key string, value int64) {
	if v := m.Get(key); v != nil {
		if i, ok := v.(*expvar.Int); ok {
			i.Set(value)
			return
		}
	}
	i := new(expvar.Int)
	i.Set(value)
	m.Set(key, i)
}

func setString(m *expvar.Map, key string, value string) {
	if v := m.Get(key); v != nil {
		if s, ok := v.(*expvar.String); ok {
			s.Set(value)
			return
		}
	}
	s := new(expvar.String)
	s.Set(value)
	m.Set(key, s)
}
