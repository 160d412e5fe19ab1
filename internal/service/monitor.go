package service

import (
	"sync"
	"time"
)

// Monitor counts checkout and infrastructure outcomes for the admin stats
// endpoint.
type Monitor struct {
	mu sync.RWMutex

	CheckoutRequests  int64
	OrdersPlaced      int64
	InsufficientStock int64
	Rollbacks         int64
	Cancellations     int64

	DBErrors int64
	MQErrors int64

	LastCheckoutTime time.Time
	LastDBError      time.Time
	LastMQError      time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor returns the process-wide monitor.
func GetMonitor() *Monitor {
	return globalMonitor
}

func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

func (m *Monitor) RecordOrderPlaced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersPlaced++
}

func (m *Monitor) RecordInsufficientStock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsufficientStock++
}

func (m *Monitor) RecordRollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rollbacks++
}

func (m *Monitor) RecordCancellation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations++
}

func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// GetStats snapshots the counters for the stats endpoint.
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	placedRate := float64(0)
	if m.CheckoutRequests > 0 {
		placedRate = float64(m.OrdersPlaced) / float64(m.CheckoutRequests) * 100
	}

	return map[string]interface{}{
		"checkout": map[string]interface{}{
			"requests":           m.CheckoutRequests,
			"orders_placed":      m.OrdersPlaced,
			"placed_rate":        placedRate,
			"insufficient_stock": m.InsufficientStock,
			"rollbacks":          m.Rollbacks,
			"cancellations":      m.Cancellations,
		},
		"errors": map[string]interface{}{
			"db": m.DBErrors,
			"mq": m.MQErrors,
		},
		"last_events": map[string]interface{}{
			"checkout": m.LastCheckoutTime,
			"db_error": m.LastDBError,
			"mq_error": m.LastMQError,
		},
	}
}

// Reset zeroes the counters, used by tests.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests = 0
	m.OrdersPlaced = 0
	m.InsufficientStock = 0
	m.Rollbacks = 0
	m.Cancellations = 0
	m.DBErrors = 0
	m.MQErrors = 0
}
