package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/sirupsen/logrus"
)

const (
	coiIndex             = "cois"
	defaultFlushInterval = time.Second
)

// IndexingPersister mirrors saved collections into an Elasticsearch index.
// The wrapped Persister stays the source of truth; indexing failures are only logged.
// Only records that changed since the last save are queued, and the bulk indexer
// ships them in the background.
type IndexingPersister struct {
	inner Persister
	bulk  esutil.BulkIndexer
	log   *logrus.Entry

	mu      sync.Mutex
	indexed map[string]model.COI
}

// NewIndexingPersister wraps inner. With an empty esURL it returns inner unchanged.
func NewIndexingPersister(inner Persister, esURL string, log *logrus.Entry) (Persister, error) {
	if esURL == "" {
		return inner, nil
	}
	return newIndexingPersister(inner, esURL, defaultFlushInterval, log)
}

func newIndexingPersister(inner Persister, esURL string, flushInterval time.Duration, log *logrus.Entry) (*IndexingPersister, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	bulk, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         coiIndex,
		NumWorkers:    1,
		FlushInterval: flushInterval,
		OnError: func(_ context.Context, err error) {
			log.Warnf("[bulkIndexer] Elasticsearch bulk request failed: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch bulk indexer: %w", err)
	}
	return &IndexingPersister{
		inner:   inner,
		bulk:    bulk,
		log:     log,
		indexed: make(map[string]model.COI),
	}, nil
}

// Load treats the loaded collection as already indexed.
func (p *IndexingPersister) Load(ctx context.Context) ([]model.COI, error) {
	cois, err := p.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.indexed = make(map[string]model.COI, len(cois))
	for _, c := range cois {
		p.indexed[c.ID] = c
	}
	p.mu.Unlock()
	return cois, nil
}

func (p *IndexingPersister) Save(ctx context.Context, cois []model.COI) error {
	if err := p.inner.Save(ctx, cois); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]model.COI, len(cois))
	for _, c := range cois {
		current[c.ID] = c
		if prev, ok := p.indexed[c.ID]; ok && prev == c {
			continue
		}
		p.indexCOI(ctx, c)
	}
	for id := range p.indexed {
		if _, ok := current[id]; !ok {
			p.deleteCOI(ctx, id)
		}
	}
	p.indexed = current
	return nil
}

// Close flushes queued changes and stops the bulk indexer.
func (p *IndexingPersister) Close(ctx context.Context) error {
	if err := p.bulk.Close(ctx); err != nil {
		return fmt.Errorf("failed to close Elasticsearch bulk indexer: %w", err)
	}
	return nil
}

func (p *IndexingPersister) indexCOI(ctx context.Context, c model.COI) {
	body, err := json.Marshal(c)
	if err != nil {
		p.log.Warnf("[indexCOI] failed to marshal coi %s: %v", c.ID, err)
		return
	}
	err = p.bulk.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: c.ID,
		Body:       bytes.NewReader(body),
		OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				p.log.Warnf("[indexCOI] Elasticsearch indexing error for %s: %v", c.ID, err)
				return
			}
			p.log.Warnf("[indexCOI] Elasticsearch indexing failed for %s: %s: %s", c.ID, res.Error.Type, res.Error.Reason)
		},
	})
	if err != nil {
		p.log.Warnf("[indexCOI] failed to queue coi %s: %v", c.ID, err)
	}
}

func (p *IndexingPersister) deleteCOI(ctx context.Context, id string) {
	err := p.bulk.Add(ctx, esutil.BulkIndexerItem{
		Action:     "delete",
		DocumentID: id,
		OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				p.log.Warnf("[deleteCOI] Elasticsearch delete error for %s: %v", id, err)
				return
			}
			if res.Status != 404 {
				p.log.Warnf("[deleteCOI] Elasticsearch delete failed for %s: %s", id, res.Error.Reason)
			}
		},
	})
	if err != nil {
		p.log.Warnf("[deleteCOI] failed to queue delete of %s: %v", id, err)
	}
}
