package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/tokenmeter/internal/db"
	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
)

// --- Mock KV ---

type mockKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// --- Tests ---

func TestSaveLoad_RoundTrip(t *testing.T) {
	kv := newMockKV()
	s := New(kv, "tokenmeter:")

	snap := domusage.NewSnapshot(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	snap.TotalRequests = 42
	snap.DailyRequests = 7
	snap.Models["model-x"] = domusage.ModelStats{InputTokens: 100, DailyInputTokens: 20}

	if err := s.Save(context.Background(), snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after save")
	}
	if loaded.TotalRequests != 42 || loaded.DailyRequests != 7 {
		t.Errorf("counters mismatch: %+v", loaded)
	}
	if loaded.Models["model-x"].InputTokens != 100 {
		t.Errorf("model stats mismatch: %+v", loaded.Models["model-x"])
	}
	if !loaded.LastResetDaily.Equal(snap.LastResetDaily) {
		t.Errorf("last_reset_daily mismatch: %v vs %v", loaded.LastResetDaily, snap.LastResetDaily)
	}
}

func TestLoad_NothingPersisted(t *testing.T) {
	s := New(newMockKV(), "tokenmeter:")

	_, ok, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestLoad_StoreError(t *testing.T) {
	kv := newMockKV()
	kv.getErr = errors.New("connection refused")
	s := New(kv, "tokenmeter:")

	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_CorruptPayload(t *testing.T) {
	kv := newMockKV()
	kv.data["tokenmeter:usage:snapshot"] = []byte("{not json")
	s := New(kv, "tokenmeter:")

	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_NilModelsMapNormalized(t *testing.T) {
	kv := newMockKV()
	kv.data["tokenmeter:usage:snapshot"] = []byte(`{"total_requests":5,"models":null}`)
	s := New(kv, "tokenmeter:")

	snap, ok, err := s.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if snap.Models == nil {
		t.Error("expected non-nil models map")
	}
}

func TestSave_StoreError(t *testing.T) {
	kv := newMockKV()
	kv.setErr = errors.New("readonly replica")
	s := New(kv, "tokenmeter:")

	err := s.Save(context.Background(), domusage.NewSnapshot(time.Now().UTC()))
	if err == nil {
		t.Fatal("expected error")
	}
}
