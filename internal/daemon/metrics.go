package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics counts relay activity. Every field is safe for concurrent use.
type Metrics struct {
	EventsReceived   atomic.Int64
	EventsRelayed    atomic.Int64
	EventsDropped    atomic.Int64
	StaleClients     atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates zeroed metrics starting now
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

func (m *Metrics) received()        { m.EventsReceived.Add(1) }
func (m *Metrics) relayed()         { m.EventsRelayed.Add(1) }
func (m *Metrics) dropped()         { m.EventsDropped.Add(1) }
func (m *Metrics) staleRemoved()    { m.StaleClients.Add(1) }
func (m *Metrics) setClients(n int) { m.ConnectedClients.Store(int32(n)) }

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	EventsReceived   int64     `json:"events_received"`
	EventsRelayed    int64     `json:"events_relayed"`
	EventsDropped    int64     `json:"events_dropped"`
	StaleClients     int64     `json:"stale_clients"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// Snapshot copies the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsReceived:   m.EventsReceived.Load(),
		EventsRelayed:    m.EventsRelayed.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		StaleClients:     m.StaleClients.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
