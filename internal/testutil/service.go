package testutil

import (
	"muse-go/internal/encryption"
	"muse-go/internal/kv"
	"muse-go/internal/muse"
)

// TestService bundles a MuseService with the fakes wired into it, so tests
// can drive the service and inspect the substrate directly.
type TestService struct {
	Service *muse.MuseService
	Store   *kv.MemoryStore
	Remote  *FakeRemote
	Clock   *StubClock
	IDs     *StubIDGenerator
}

// NewTestService creates a MuseService over an in-memory store, a FakeRemote,
// a fixed clock, sequential IDs, and the default sync policy.
func NewTestService() *TestService {
	return NewTestServiceWithPolicy(muse.DefaultSyncPolicy())
}

// NewTestServiceWithPolicy is NewTestService with a custom sync policy, for
// tests exercising the cap and batch behavior with small numbers.
func NewTestServiceWithPolicy(policy muse.SyncPolicy) *TestService {
	store := kv.NewMemoryStore()
	remote := NewFakeRemote()
	clock := FixedClock()
	ids := NewStubIDGenerator()
	svc := muse.NewMuseService(store, remote, encryption.NewTestSealer(), muse.NewNopLogger(), clock, ids, policy)
	return &TestService{
		Service: svc,
		Store:   store,
		Remote:  remote,
		Clock:   clock,
		IDs:     ids,
	}
}
