package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
	"github.com/reno-ai/reno-backend/internal/projects/repository"
)

// OpKind identifies a mirror operation.
type OpKind string

const (
	OpSave   OpKind = "save"
	OpDelete OpKind = "delete"
)

// MirrorResult is emitted after each persisted operation so callers (and
// tests) can observe eventual consistency without real timers.
type MirrorResult struct {
	Kind      OpKind
	ProjectID string
	Err       error
}

type mirrorOp struct {
	kind    OpKind
	project *domain.Project
	id      string
}

// Mirror is the write-behind queue between the in-memory store and the
// persistent store. Writes never block the caller and never roll back
// in-memory state on failure; the store is a best-effort cache.
type Mirror struct {
	store   repository.ProjectStore
	ops     chan mirrorOp
	results chan MirrorResult
	timeout time.Duration
	wg      sync.WaitGroup

	closeOnce sync.Once
}

func NewMirror(store repository.ProjectStore) *Mirror {
	return &Mirror{
		store:   store,
		ops:     make(chan mirrorOp, 64),
		results: make(chan MirrorResult, 64),
		timeout: 5 * time.Second,
	}
}

// Start launches the worker goroutine draining the queue.
func (m *Mirror) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for op := range m.ops {
			m.apply(op)
		}
		close(m.results)
	}()
}

func (m *Mirror) apply(op mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var err error
	switch op.kind {
	case OpSave:
		err = m.store.Save(ctx, op.project)
	case OpDelete:
		err = m.store.Delete(ctx, op.id)
	}

	if err != nil {
		log.Printf("[error] operation=mirror_%s project_id=%s error=%v", op.kind, op.id, err)
	}

	select {
	case m.results <- MirrorResult{Kind: op.kind, ProjectID: op.id, Err: err}:
	default:
		// nobody listening and buffer full; results are advisory
	}
}

// EnqueueSave queues a save of the given project snapshot. Drops the write
// (with a log line) rather than blocking when the queue is full.
func (m *Mirror) EnqueueSave(p *domain.Project) {
	op := mirrorOp{kind: OpSave, project: p.Clone(), id: p.ID}
	select {
	case m.ops <- op:
	default:
		log.Printf("[warn] operation=mirror_save project_id=%s message=queue full, write dropped", p.ID)
	}
}

// EnqueueDelete queues removal of the persisted record.
func (m *Mirror) EnqueueDelete(id string) {
	select {
	case m.ops <- mirrorOp{kind: OpDelete, id: id}:
	default:
		log.Printf("[warn] operation=mirror_delete project_id=%s message=queue full, delete dropped", id)
	}
}

// Results exposes per-operation outcomes in completion order.
func (m *Mirror) Results() <-chan MirrorResult {
	return m.results
}

// Close drains pending operations and stops the worker.
func (m *Mirror) Close() {
	m.closeOnce.Do(func() {
		close(m.ops)
	})
	m.wg.Wait()
}
