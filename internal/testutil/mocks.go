package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"vihub/internal/models"
	"vihub/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu                sync.Mutex
	PersistenceCalls  int
	PatientsTotal     int
	DirectoryRequests map[string]int // key: "operation:outcome"
	SyncSuccesses     int
	SyncFailures      int
	CacheHits         int
	CacheMisses       int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceCalls++
}
func (m *MockMetrics) SetPatientsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PatientsTotal = count
}
func (m *MockMetrics) IncDirectoryRequests(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DirectoryRequests == nil {
		m.DirectoryRequests = make(map[string]int)
	}
	m.DirectoryRequests[operation+":"+outcome]++
}
func (m *MockMetrics) ObserveDirectoryDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncSyncResults(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.SyncSuccesses++
	} else {
		m.SyncFailures++
	}
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

var ErrMockTransport = errors.New("mock transport failure")

// MockTransport implements directory.Transport. Unset functions return
// empty responses. Calls are recorded per operation.
type MockTransport struct {
	mu             sync.Mutex
	SearchFn       func(models.SearchParams) ([]map[string]any, error)
	DetailFn       func(queryID string) (map[string]any, error)
	FingerprintsFn func(wallet string) ([]map[string]any, error)
	FacialFn       func(wallet string) (any, error)
	Calls          []string // "operation:argument"
}

func (m *MockTransport) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallsFor returns the arguments recorded for operation.
func (m *MockTransport) CallsFor(operation string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	prefix := operation + ":"
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, strings.TrimPrefix(c, prefix))
		}
	}
	return out
}

func (m *MockTransport) Search(_ context.Context, params models.SearchParams) ([]map[string]any, error) {
	m.record("search:" + params.Guarantor)
	if m.SearchFn != nil {
		return m.SearchFn(params)
	}
	return []map[string]any{}, nil
}

func (m *MockTransport) Detail(_ context.Context, queryID string) (map[string]any, error) {
	m.record("detail:" + queryID)
	if m.DetailFn != nil {
		return m.DetailFn(queryID)
	}
	return map[string]any{}, nil
}

func (m *MockTransport) Fingerprints(_ context.Context, wallet string) ([]map[string]any, error) {
	m.record("fingerprints:" + wallet)
	if m.FingerprintsFn != nil {
		return m.FingerprintsFn(wallet)
	}
	return []map[string]any{}, nil
}

func (m *MockTransport) Facial(_ context.Context, wallet string) (any, error) {
	m.record("facial:" + wallet)
	if m.FacialFn != nil {
		return m.FacialFn(wallet)
	}
	return "", nil
}

// MockPersister implements services.PersisterInterface in memory.
type MockPersister struct {
	mu        sync.Mutex
	Stored    []models.Patient
	SaveCalls int
	LoadErr   error
	SaveErr   error
}

func (m *MockPersister) LoadAll() ([]models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]models.Patient, len(m.Stored))
	for i, p := range m.Stored {
		out[i] = p.Clone()
	}
	return out, nil
}

func (m *MockPersister) SaveAll(patients []models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Stored = make([]models.Patient, len(patients))
	for i, p := range patients {
		m.Stored[i] = p.Clone()
	}
	return nil
}

// CountingPacer implements services.Pacer without sleeping.
type CountingPacer struct {
	mu    sync.Mutex
	Waits int
	Err   error
}

func (p *CountingPacer) Wait(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waits++
	return p.Err
}
