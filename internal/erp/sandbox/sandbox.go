// Package sandbox is an in-process ERP used for local runs and tests.
package sandbox

import (
	"context"
	"errors"
	"sync"

	"github.com/TemirB/erp-order-bridge/internal/erp"
)

var ErrClosed = errors.New("sandbox session closed")

type Document struct {
	ID     int
	Number int
	erp.Document
}

// ERP numbers documents sequentially from the configured start values.
type ERP struct {
	mu      sync.Mutex
	nextID  int
	nextNum int
	docs    map[int]Document
	order   []int

	connectErr   error
	docNumberErr error
	closeErr     error
	reject       func(erp.Document) *erp.Rejection

	connects int
	closes   int
}

func New(firstDocID, firstDocNum int) *ERP {
	return &ERP{
		nextID:  firstDocID,
		nextNum: firstDocNum,
		docs:    make(map[int]Document),
	}
}

// FailConnect makes every Connect return err until reset with nil.
func (e *ERP) FailConnect(err error) {
	e.mu.Lock()
	e.connectErr = err
	e.mu.Unlock()
}

// FailDocNumber makes DocNumber fail after the document was stored.
func (e *ERP) FailDocNumber(err error) {
	e.mu.Lock()
	e.docNumberErr = err
	e.mu.Unlock()
}

func (e *ERP) FailClose(err error) {
	e.mu.Lock()
	e.closeErr = err
	e.mu.Unlock()
}

// RejectWhen installs a business rule evaluated on every AddOrder.
func (e *ERP) RejectWhen(fn func(erp.Document) *erp.Rejection) {
	e.mu.Lock()
	e.reject = fn
	e.mu.Unlock()
}

func (e *ERP) Documents() []Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Document, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.docs[id])
	}
	return out
}

// Sessions reports how many sessions were opened and closed.
func (e *ERP) Sessions() (opened, closed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connects, e.closes
}

func (e *ERP) Connect(ctx context.Context) (erp.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.connectErr != nil {
		return nil, e.connectErr
	}
	e.connects++
	return &session{erp: e}, nil
}

type session struct {
	erp    *ERP
	closed bool
}

func (s *session) AddOrder(ctx context.Context, doc erp.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e := s.erp
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if e.reject != nil {
		if rej := e.reject(doc); rej != nil {
			return 0, rej
		}
	}

	d := Document{ID: e.nextID, Number: e.nextNum, Document: doc}
	e.docs[d.ID] = d
	e.order = append(e.order, d.ID)
	e.nextID++
	e.nextNum++
	return d.ID, nil
}

func (s *session) DocNumber(ctx context.Context, docID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e := s.erp
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if e.docNumberErr != nil {
		return 0, e.docNumberErr
	}
	d, ok := e.docs[docID]
	if !ok {
		return 0, errors.New("document not found")
	}
	return d.Number, nil
}

func (s *session) Close(context.Context) error {
	e := s.erp
	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.closed {
		s.closed = true
		e.closes++
	}
	return e.closeErr
}
