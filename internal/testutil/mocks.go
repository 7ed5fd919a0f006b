package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"giftd/internal/models"
	"giftd/internal/providers"
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

// MockStore implements services.StoreInterface in memory. FailSaves makes
// every Save fail, for exercising the rollback path.
type MockStore struct {
	mu        sync.Mutex
	Loaded    *models.Document
	SaveCalls int
	FailSaves bool
}

func (m *MockStore) Load() *models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Loaded == nil {
		return models.NewDocument()
	}
	return m.Loaded
}

func (m *MockStore) Save(doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.FailSaves {
		return errors.New("disk full")
	}
	return nil
}

// MockSender implements delivery.Sender and records sent messages.
type MockSender struct {
	mu    sync.Mutex
	Fail  bool
	Sends []SentMessage
}

type SentMessage struct {
	UserID string
	Text   string
}

func (m *MockSender) SendPrivate(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("no private channel")
	}
	m.Sends = append(m.Sends, SentMessage{UserID: userID, Text: text})
	return nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// observations.
type MockMetrics struct {
	mu                  sync.Mutex
	PersistObservations int
	Checkins            int
	PointsAwarded       int
	Redemptions         map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCheckins() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checkins++
}

func (m *MockMetrics) AddPointsAwarded(points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PointsAwarded += points
}

func (m *MockMetrics) IncRedemptions(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Redemptions == nil {
		m.Redemptions = make(map[string]int)
	}
	m.Redemptions[result]++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistObservations++
}

// MockCompressor is an identity compressor for store tests.
type MockCompressor struct {
	FailCompress   bool
	FailDecompress bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.FailCompress {
		return nil, errors.New("compress failed")
	}
	return val, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.FailDecompress {
		return nil, errors.New("decompress failed")
	}
	return val, nil
}

func (m *MockCompressor) Close() {}
