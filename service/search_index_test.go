package services

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// esRecorder answers like an Elasticsearch node and records bulk actions as "<action> <id>".
type esRecorder struct {
	mu      sync.Mutex
	actions []string
	status  int
}

func (r *esRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var actions []string
	if req.URL.Path == "/_bulk" || req.URL.Path == "/"+coiIndex+"/_bulk" {
		sc := bufio.NewScanner(req.Body)
		for sc.Scan() {
			var meta map[string]struct {
				ID string `json:"_id"`
			}
			if err := json.Unmarshal(sc.Bytes(), &meta); err != nil {
				continue
			}
			for _, action := range []string{"index", "delete"} {
				if m, ok := meta[action]; ok && m.ID != "" {
					actions = append(actions, action+" "+m.ID)
				}
			}
		}
	}

	r.mu.Lock()
	r.actions = append(r.actions, actions...)
	status := r.status
	r.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
}

func (r *esRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.actions
	r.actions = nil
	return out
}

// newTestIndexer flushes only on Close so tests see every queued action at once.
func newTestIndexer(t *testing.T, inner Persister, status int) (*IndexingPersister, *esRecorder) {
	t.Helper()
	rec := &esRecorder{status: status}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	p, err := newIndexingPersister(inner, srv.URL, time.Hour, quietLogger())
	require.NoError(t, err)
	return p, rec
}

func TestNewIndexingPersisterWithoutURLReturnsInner(t *testing.T) {
	inner := &memPersister{}
	p, err := NewIndexingPersister(inner, "", quietLogger())
	require.NoError(t, err)
	assert.Same(t, inner, p)
}

func TestIndexingPersisterMirrorsOnlyChanges(t *testing.T) {
	ctx := context.Background()
	cois := makeCOIs(3)

	p, rec := newTestIndexer(t, &memPersister{}, http.StatusOK)
	require.NoError(t, p.Save(ctx, cois))

	changed := append([]model.COI(nil), cois[1:]...)
	changed[0].Status = model.StatusRejected
	require.NoError(t, p.Save(ctx, changed))
	require.NoError(t, p.Close(ctx))

	assert.Equal(t, []string{
		"index coi-1", "index coi-2", "index coi-3",
		"index coi-2", "delete coi-1",
	}, rec.take())

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, changed, got)
}

func TestIndexingPersisterIndexesOneRecordPerAdd(t *testing.T) {
	ctx := context.Background()
	inner := &memPersister{}
	payload, err := EncodeCOIs(makeCOIs(12))
	require.NoError(t, err)
	inner.payload = payload

	p, rec := newTestIndexer(t, inner, http.StatusOK)
	store := NewCOIStore(ctx, p, WithLogger(quietLogger()), WithClock(func() time.Time { return FixedTime }))

	added, err := store.Add(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, p.Close(ctx))

	assert.Equal(t, []string{"index " + added.ID}, rec.take())
	assert.Equal(t, 1, inner.saveCount())
}

func TestIndexingPersisterIgnoresIndexFailures(t *testing.T) {
	inner := &memPersister{}
	p, _ := newTestIndexer(t, inner, http.StatusInternalServerError)

	require.NoError(t, p.Save(context.Background(), makeCOIs(1)))
	_ = p.Close(context.Background())
	assert.Equal(t, 1, inner.saveCount())
}

func TestIndexingPersisterPropagatesInnerSaveError(t *testing.T) {
	inner := &memPersister{saveErr: assert.AnError}
	p, rec := newTestIndexer(t, inner, http.StatusOK)

	assert.ErrorIs(t, p.Save(context.Background(), makeCOIs(1)), assert.AnError)
	require.NoError(t, p.Close(context.Background()))
	assert.Empty(t, rec.take())
}
