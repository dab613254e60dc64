package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for pipeline outcomes.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	ingestionCount  map[string]int64
	automationCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		ingestionCount:  make(map[string]int64),
		automationCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordIngestion tracks ingestion outcomes per account.
func (m *Metrics) RecordIngestion(accountID string, newTickets, newMessages, errors int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestionCount[accountID+"|tickets"] += int64(newTickets)
	m.ingestionCount[accountID+"|messages"] += int64(newMessages)
	m.ingestionCount[accountID+"|errors"] += int64(errors)
}

// RecordAutomationRun tracks actions executed per trigger.
func (m *Metrics) RecordAutomationRun(trigger string, actionsExecuted int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.automationCount[trigger] += int64(actionsExecuted)
}

// Snapshot copies current counter state.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]map[string]int64{
		"requests":   copyCounters(m.requestCount),
		"errors":     copyCounters(m.errorCount),
		"ingestion":  copyCounters(m.ingestionCount),
		"automation": copyCounters(m.automationCount),
	}
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
