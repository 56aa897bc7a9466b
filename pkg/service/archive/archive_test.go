package archive_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/archive"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memStorage) Put(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[path] = data
	return nil
}

func syncDispatch(errs *[]error) archive.Dispatcher {
	return func(ctx context.Context, handler func(ctx context.Context) error) {
		if err := handler(ctx); err != nil {
			*errs = append(*errs, err)
		}
	}
}

var eventTime = time.Date(2026, 3, 7, 23, 30, 0, 0, time.FixedZone("JST", 9*60*60))

func TestObjectPath(t *testing.T) {
	a := archive.New(&memStorage{}, archive.WithPrefix("tyche/prod"))
	p := a.ObjectPath("c-1", types.EventExecutiveMetricsUpdated, eventTime)
	gt.Value(t, p).Equal("tyche/prod/2026/03/07/c-1-executive_metrics_updated.json")

	noPrefix := archive.New(&memStorage{})
	gt.Value(t, noPrefix.ObjectPath("c-1", types.EventCorrelationUpdated, eventTime)).
		Equal("2026/03/07/c-1-correlation_updated.json")
}

func TestNotify_StoresSnapshot(t *testing.T) {
	store := &memStorage{}
	var errs []error
	a := archive.New(store, archive.WithPrefix("snap"), archive.WithDispatcher(syncDispatch(&errs)))

	a.Notify(context.Background(), model.Event{
		Type:      types.EventQuantitativeAnalysisUpdated,
		CycleID:   "c-2",
		Timestamp: eventTime,
		Payload:   &model.QuantitativeAnalysis{TotalAssetValue: 1000000, VaR: map[string]float64{"0.95": 329000}},
	})

	gt.Array(t, errs).Length(0)
	data, ok := store.objects["snap/2026/03/07/c-2-quantitative_analysis_updated.json"]
	gt.Bool(t, ok).True()

	var rec struct {
		CycleID string `json:"cycle_id"`
		Kind    string `json:"kind"`
		Payload struct {
			TotalAssetValue float64            `json:"total_asset_value"`
			VaR             map[string]float64 `json:"var"`
		} `json:"payload"`
	}
	gt.NoError(t, json.Unmarshal(data, &rec)).Required()
	gt.Value(t, rec.CycleID).Equal("c-2")
	gt.Value(t, rec.Kind).Equal("quantitative_analysis_updated")
	gt.Value(t, rec.Payload.VaR["0.95"]).Equal(329000.0)
}

func TestNotify_SkipsUnarchivedEvents(t *testing.T) {
	store := &memStorage{}
	var errs []error
	a := archive.New(store, archive.WithDispatcher(syncDispatch(&errs)))

	a.Notify(context.Background(), model.Event{Type: types.EventEngineStarted, Timestamp: eventTime})
	a.Notify(context.Background(), model.Event{Type: types.EventScoresUpdated, CycleID: "c-3", Timestamp: eventTime})
	a.Notify(context.Background(), model.Event{Type: types.EventExecutiveMetricsUpdated, Timestamp: eventTime})
	gt.Value(t, len(store.objects)).Equal(0)
}

func TestNotify_StorageError(t *testing.T) {
	store := &memStorage{err: errors.New("permission denied")}
	var errs []error
	a := archive.New(store, archive.WithDispatcher(syncDispatch(&errs)))

	a.Notify(context.Background(), model.Event{
		Type:      types.EventExecutiveMetricsUpdated,
		CycleID:   "c-4",
		Timestamp: eventTime,
		Payload:   &model.ExecutiveMetrics{OverallScore: 0.4},
	})
	gt.Array(t, errs).Length(1)
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	_, err := archive.NewGCS(context.Background(), "")
	gt.Value(t, err).NotNil()
}

func TestGCSIntegration(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	ctx := context.Background()
	store, err := archive.NewGCS(ctx, bucket)
	gt.NoError(t, err).Required()
	defer func() {
		gt.NoError(t, store.Close())
	}()

	path := "tyche-test/" + time.Now().UTC().Format("20060102150405") + ".json"
	gt.NoError(t, store.Put(ctx, path, []byte(`{"ok":true}`))).Required()
}
