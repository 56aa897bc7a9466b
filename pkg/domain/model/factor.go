package model

import (
	"time"

	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// DefaultHistoryCapacity is the number of observations a factor keeps
const DefaultHistoryCapacity = 100

// HistoryPoint is a single observation of a factor value
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// History is a fixed-capacity ring of observations. The oldest point is evicted first.
type History struct {
	points []HistoryPoint
	start  int
	size   int
}

// NewHistory creates an empty history holding at most capacity points
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{points: make([]HistoryPoint, capacity)}
}

// Append adds p as the newest observation
func (h *History) Append(p HistoryPoint) {
	capacity := len(h.points)
	if h.size < capacity {
		h.points[(h.start+h.size)%capacity] = p
		h.size++
		return
	}
	h.points[h.start] = p
	h.start = (h.start + 1) % capacity
}

// Len returns the number of stored points
func (h *History) Len() int {
	return h.size
}

// Cap returns the capacity
func (h *History) Cap() int {
	return len(h.points)
}

// Points returns stored observations from oldest to newest
func (h *History) Points() []HistoryPoint {
	return h.Last(h.size)
}

// Last returns up to n most recent observations, oldest first
func (h *History) Last(n int) []HistoryPoint {
	if n <= 0 || h.size == 0 {
		return []HistoryPoint{}
	}
	if n > h.size {
		n = h.size
	}
	out := make([]HistoryPoint, n)
	capacity := len(h.points)
	offset := h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.points[(h.start+offset+i)%capacity]
	}
	return out
}

// Values returns stored values from oldest to newest
func (h *History) Values() []float64 {
	points := h.Points()
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

// Clone returns a deep copy
func (h *History) Clone() *History {
	c := &History{
		points: make([]HistoryPoint, len(h.points)),
		start:  h.start,
		size:   h.size,
	}
	copy(c.points, h.points)
	return c
}

// RiskFactor is a primitive scalar indicator of exposure to one narrow risk driver
type RiskFactor struct {
	ID           types.FactorID
	Name         string
	Domain       types.Domain
	Value        float64
	Trend        types.Trend
	Volatility   float64
	History      *History
	Correlations map[types.FactorID]float64
	UpdatedAt    time.Time
}

// Clone returns a deep copy of the factor
func (f *RiskFactor) Clone() *RiskFactor {
	c := *f
	if f.History != nil {
		c.History = f.History.Clone()
	}
	c.Correlations = make(map[types.FactorID]float64, len(f.Correlations))
	for k, v := range f.Correlations {
		c.Correlations[k] = v
	}
	return &c
}

// FactorSnapshot captures factor values so they can be restored exactly
type FactorSnapshot map[types.FactorID]float64
