// Metrics collection for the armctl host
//
// Provides Prometheus-compatible metrics collection with support for:
// - Counter: Monotonically increasing values
// - Gauge: Values that can go up and down
// - Histogram: Distribution of observations in buckets
//
// Outputs in Prometheus text format for easy scraping.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Labels represents metric labels as key-value pairs
type Labels map[string]string

// labelKey generates a unique map key for a label set
func labelKey(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}

// formatLabels formats labels for Prometheus output
func formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		v := strings.ReplaceAll(labels[k], "\\", "\\\\")
		v = strings.ReplaceAll(v, "\"", "\\\"")
		v = strings.ReplaceAll(v, "\n", "\\n")
		fmt.Fprintf(&sb, "%s=%q", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Write(sb *strings.Builder)
}

// series holds one labeled time series of a metric
type series struct {
	labels Labels
	value  float64

	// histogram-only state
	count   uint64
	buckets []uint64
}

// metricBase holds the shared name/help/series bookkeeping
type metricBase struct {
	name string
	help string

	mu     sync.Mutex
	series map[string]*series
}

func (m *metricBase) Name() string { return m.name }

// get returns the series for labels, creating it if needed. Caller holds mu.
func (m *metricBase) get(labels Labels, numBuckets int) *series {
	key := labelKey(labels)
	s, ok := m.series[key]
	if !ok {
		s = &series{labels: labels}
		if numBuckets > 0 {
			s.buckets = make([]uint64, numBuckets)
		}
		m.series[key] = s
	}
	return s
}

func (m *metricBase) writeHeader(sb *strings.Builder, typ string) {
	fmt.Fprintf(sb, "# HELP %s %s\n# TYPE %s %s\n", m.name, m.help, m.name, typ)
}

// Counter is a monotonically increasing metric
type Counter struct {
	metricBase
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{metricBase{name: name, help: help, series: make(map[string]*series)}}
}

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by the given value
func (c *Counter) Add(labels Labels, delta float64) {
	if delta < 0 {
		return
	}
	c.mu.Lock()
	c.get(labels, 0).value += delta
	c.mu.Unlock()
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[labelKey(labels)]
	if !ok {
		return 0
	}
	return s.value
}

func (c *Counter) Write(sb *strings.Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeHeader(sb, "counter")
	for _, s := range c.sorted() {
		fmt.Fprintf(sb, "%s%s %g\n", c.name, formatLabels(s.labels), s.value)
	}
}

// Gauge is a metric that can go up and down
type Gauge struct {
	metricBase
}

// NewGauge creates a new gauge metric
func NewGauge(name, help string) *Gauge {
	return &Gauge{metricBase{name: name, help: help, series: make(map[string]*series)}}
}

// Set sets the gauge to the given value
func (g *Gauge) Set(labels Labels, value float64) {
	g.mu.Lock()
	g.get(labels, 0).value = value
	g.mu.Unlock()
}

// Add adds the given value to the gauge
func (g *Gauge) Add(labels Labels, delta float64) {
	g.mu.Lock()
	g.get(labels, 0).value += delta
	g.mu.Unlock()
}

// Get returns the current gauge value for labels
func (g *Gauge) Get(labels Labels) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.series[labelKey(labels)]
	if !ok {
		return 0
	}
	return s.value
}

func (g *Gauge) Write(sb *strings.Builder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writeHeader(sb, "gauge")
	for _, s := range g.sorted() {
		fmt.Fprintf(sb, "%s%s %g\n", g.name, formatLabels(s.labels), s.value)
	}
}

// Histogram tracks the distribution of observations
type Histogram struct {
	metricBase
	bounds []float64
}

// NewHistogram creates a new histogram metric with the given bucket bounds
func NewHistogram(name, help string, bounds []float64) *Histogram {
	sorted := make([]float64, len(bounds))
	copy(sorted, bounds)
	sort.Float64s(sorted)
	return &Histogram{
		metricBase: metricBase{name: name, help: help, series: make(map[string]*series)},
		bounds:     sorted,
	}
}

// DefaultBuckets returns default histogram buckets for latency metrics
func DefaultBuckets() []float64 {
	return []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1}
}

// Observe records a value in the histogram
func (h *Histogram) Observe(labels Labels, value float64) {
	h.mu.Lock()
	s := h.get(labels, len(h.bounds))
	s.count++
	s.value += value
	for i, bound := range h.bounds {
		if value <= bound {
			s.buckets[i]++
		}
	}
	h.mu.Unlock()
}

// Timer returns a function that records the elapsed time when called
func (h *Histogram) Timer(labels Labels) func() {
	start := time.Now()
	return func() {
		h.Observe(labels, time.Since(start).Seconds())
	}
}

// Count returns the number of observations for labels
func (h *Histogram) Count(labels Labels) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[labelKey(labels)]
	if !ok {
		return 0
	}
	return s.count
}

func (h *Histogram) Write(sb *strings.Builder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeHeader(sb, "histogram")
	for _, s := range h.sorted() {
		cumulative := uint64(0)
		for i, bound := range h.bounds {
			cumulative += s.buckets[i]
			labels := make(Labels, len(s.labels)+1)
			for k, v := range s.labels {
				labels[k] = v
			}
			labels["le"] = fmt.Sprintf("%g", bound)
			fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, formatLabels(labels), cumulative)
		}
		infLabels := make(Labels, len(s.labels)+1)
		for k, v := range s.labels {
			infLabels[k] = v
		}
		infLabels["le"] = "+Inf"
		fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, formatLabels(infLabels), s.count)
		fmt.Fprintf(sb, "%s_sum%s %g\n", h.name, formatLabels(s.labels), s.value)
		fmt.Fprintf(sb, "%s_count%s %d\n", h.name, formatLabels(s.labels), s.count)
	}
}

// sorted returns the series in stable label-key order. Caller holds mu.
func (m *metricBase) sorted() []*series {
	keys := make([]string, 0, len(m.series))
	for k := range m.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*series, len(keys))
	for i, k := range keys {
		out[i] = m.series[k]
	}
	return out
}

// Registry holds all registered metrics
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := metric.Name()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q already registered", name)
	}
	r.metrics[name] = metric
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(metric Metric) {
	if err := r.Register(metric); err != nil {
		panic(err)
	}
}

// Gather collects all metrics in Prometheus text format, in registration
// order
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}
