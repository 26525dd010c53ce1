// Package storetest provides an in-memory card store for tests.
package storetest

import (
	"context"
	"sync"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// WriteFunc decides the outcome of one write call. Returning (nil, nil)
// means success.
type WriteFunc func(ctx context.Context, call int, req *contracts.WriteRequest) (*contracts.WriteResult, error)

// FakeStore records every call and replies with scripted results.
type FakeStore struct {
	mu        sync.Mutex
	writes    []contracts.WriteRequest
	reads     int
	onWrite   WriteFunc
	readData  *domain.CardSet
	readErr   error
	readFails string
}

// New creates a FakeStore where every write succeeds and reads return an
// empty card set.
func New() *FakeStore {
	return &FakeStore{readData: &domain.CardSet{}}
}

// OnWrite installs a write outcome function.
func (f *FakeStore) OnWrite(fn WriteFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onWrite = fn
}

// FailCalls makes the given zero-based write calls return success false with
// reason.
func (f *FakeStore) FailCalls(reason string, calls ...int) {
	failing := make(map[int]bool, len(calls))
	for _, c := range calls {
		failing[c] = true
	}
	f.OnWrite(func(_ context.Context, call int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		if failing[call] {
			return &contracts.WriteResult{Success: false, Error: reason}, nil
		}
		return nil, nil
	})
}

// SetReadData sets the card set returned by LoadAll.
func (f *FakeStore) SetReadData(cards *domain.CardSet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readData = cards
}

// SetReadError makes LoadAll fail with a transport error.
func (f *FakeStore) SetReadError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// SetReadFailure makes LoadAll answer success false with reason.
func (f *FakeStore) SetReadFailure(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readFails = reason
}

// UpdateFields implements contracts.CardWriter.
func (f *FakeStore) UpdateFields(ctx context.Context, req *contracts.WriteRequest) (*contracts.WriteResult, error) {
	f.mu.Lock()
	call := len(f.writes)
	cp := contracts.WriteRequest{ID: req.ID, CardType: req.CardType, Fields: make(map[string]string, len(req.Fields))}
	for k, v := range req.Fields {
		cp.Fields[k] = v
	}
	f.writes = append(f.writes, cp)
	fn := f.onWrite
	f.mu.Unlock()

	if fn != nil {
		res, err := fn(ctx, call, req)
		if err != nil || res != nil {
			return res, err
		}
	}
	return &contracts.WriteResult{Success: true}, nil
}

// LoadAll implements contracts.CardReader.
func (f *FakeStore) LoadAll(context.Context) (*contracts.ReadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++

	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.readFails != "" {
		return &contracts.ReadResult{Success: false, Error: f.readFails}, nil
	}
	return &contracts.ReadResult{Success: true, Data: f.readData}, nil
}

// Writes returns a copy of every write request received.
func (f *FakeStore) Writes() []contracts.WriteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contracts.WriteRequest(nil), f.writes...)
}

// Reads returns how many times LoadAll was called.
func (f *FakeStore) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}
