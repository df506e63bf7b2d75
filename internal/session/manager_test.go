package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSessionsObserver struct {
	mu   sync.Mutex
	last int
	sets int
}

func (o *fakeSessionsObserver) SetActiveSessions(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = n
	o.sets++
}

func (o *fakeSessionsObserver) snapshot() (last, sets int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.sets
}

func TestManagerReusesAuthorityPerSession(t *testing.T) {
	m := NewManager(NewMemoryCredentialStore(), &mockIdentityAPI{}, nil, nil)

	first := m.Authority("sid-1")
	second := m.Authority("sid-1")
	other := m.Authority("sid-2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestManagerReportsActiveSessionCount(t *testing.T) {
	observer := &fakeSessionsObserver{}
	m := NewManager(NewMemoryCredentialStore(), &mockIdentityAPI{}, nil, observer)

	m.Authority("sid-1")
	last, _ := observer.snapshot()
	assert.Equal(t, 1, last)

	m.Authority("sid-2")
	last, _ = observer.snapshot()
	assert.Equal(t, 2, last)

	// A repeat lookup reuses the authority and must not re-report.
	m.Authority("sid-1")
	_, sets := observer.snapshot()
	assert.Equal(t, 2, sets)

	m.Drop("sid-1")
	m.Drop("sid-2")
	last, _ = observer.snapshot()
	assert.Equal(t, 0, last)
}
