package thread

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/upstream"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

type fakeSession struct {
	mu       sync.Mutex
	identity models.Identity
	token    string
	epoch    uint64
	authed   bool
}

func (f *fakeSession) CurrentIdentity() (models.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, f.authed
}

func (f *fakeSession) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authed {
		return "", false
	}
	return f.token, true
}

func (f *fakeSession) Epoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}

func (f *fakeSession) signOut() {
	f.mu.Lock()
	f.epoch++
	f.authed = false
	f.mu.Unlock()
}

type fakeMessages struct {
	mu        sync.Mutex
	inbox     []models.Message
	sent      []models.Message
	inboxErr  error
	sentErr   error
	sendErr   error
	sendCalls int
	nextID    int64

	inboxStarted chan struct{}
	inboxRelease chan struct{}
}

func (f *fakeMessages) Inbox(ctx context.Context, token string) ([]models.Message, error) {
	f.mu.Lock()
	started := f.inboxStarted
	f.inboxStarted = nil
	release := f.inboxRelease
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inboxErr != nil {
		return nil, f.inboxErr
	}
	return append([]models.Message(nil), f.inbox...), nil
}

func (f *fakeMessages) Sent(ctx context.Context, token string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sentErr != nil {
		return nil, f.sentErr
	}
	return append([]models.Message(nil), f.sent...), nil
}

func (f *fakeMessages) Send(ctx context.Context, token string, payload upstream.SendMessagePayload) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	msg := models.Message{
		ID:          1000 + f.nextID,
		SenderID:    7,
		RecipientID: payload.RecipientID,
		Subject:     payload.Subject,
		Body:        payload.Body,
		MediaKind:   payload.MediaKind,
		SentAt:      time.Now(),
	}
	f.sent = append(f.sent, msg)
	return &msg, nil
}

func (f *fakeMessages) MarkRead(ctx context.Context, token string, messageID int64) (*models.Message, error) {
	now := time.Now()
	return &models.Message{ID: messageID, ReadAt: &now}, nil
}

type fakeDirectory struct {
	classes   []models.Class
	teachers  []models.Teacher
	guardians []models.Guardian
	err       error
}

func (f *fakeDirectory) SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.classes, nil
}

func (f *fakeDirectory) ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teachers, nil
}

func (f *fakeDirectory) ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.guardians, nil
}

func at(sec int) time.Time {
	return time.Date(2026, 3, 10, 9, 0, sec, 0, time.UTC)
}

func msg(id, sender, recipient int64, body string, sentAt time.Time) models.Message {
	return models.Message{ID: id, SenderID: sender, RecipientID: recipient, Body: body, MediaKind: models.MediaText, SentAt: sentAt}
}

func newTestSynchronizer(messages *fakeMessages, directory *fakeDirectory) (*Synchronizer, *fakeSession) {
	session := &fakeSession{
		identity: models.Identity{ID: 7, FullName: "Ana Souza", Role: models.RoleGuardian},
		token:    "tok-abc",
		authed:   true,
	}
	return NewSynchronizer(session, messages, directory, nil, nil), session
}

type fakeSyncObserver struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (o *fakeSyncObserver) ObserveSync(duration time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
	} else {
		o.ok++
	}
}

func (o *fakeSyncObserver) counts() (ok, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ok, o.failed
}

func selectThrough(t *testing.T, s *Synchronizer) {
	t.Helper()
	_, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.SelectClass(context.Background(), 10)
	require.NoError(t, err)
	require.NoError(t, s.SelectContact(context.Background(), 42))
}

func defaultDirectory() *fakeDirectory {
	return &fakeDirectory{
		classes: []models.Class{{ID: 10, Name: "3A", SchoolID: 1}},
		teachers: []models.Teacher{
			{ID: 1, UserID: 42, User: &models.PersonInfo{FullName: "Carlos Lima", Email: "carlos@escola.br"}},
		},
		guardians: []models.Guardian{
			{ID: 2, UserID: 55, User: &models.PersonInfo{FullName: "Joana Dias"}},
		},
	}
}

func TestSynchronizeMergesAndOrdersAcrossCollections(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{
			msg(3, 42, 7, "terceira", at(30)),
			msg(1, 42, 7, "primeira", at(10)),
		},
		sent: []models.Message{
			msg(2, 7, 42, "segunda", at(20)),
			msg(9, 7, 99, "outra conversa", at(15)),
		},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	_, thread, syncedAt, stale := s.Thread()
	require.NotNil(t, syncedAt)
	assert.False(t, stale)
	require.Len(t, thread, 3, "messages outside the active pair are filtered out")
	assert.Equal(t, []string{"primeira", "segunda", "terceira"}, []string{thread[0].Body, thread[1].Body, thread[2].Body})
}

func TestSynchronizeTieBreakKeepsInboxBeforeSent(t *testing.T) {
	same := at(10)
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "recebida", same)},
		sent:  []models.Message{msg(2, 7, 42, "enviada", same)},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	_, thread, _, _ := s.Thread()
	require.Len(t, thread, 2)
	assert.Equal(t, "recebida", thread[0].Body)
	assert.Equal(t, "enviada", thread[1].Body)
}

func TestSynchronizeIsIdempotentOnStableUpstream(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
		sent:  []models.Message{msg(2, 7, 42, "olá", at(20))},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	require.NoError(t, s.Synchronize(context.Background()))
	require.NoError(t, s.Synchronize(context.Background()))

	_, thread, _, _ := s.Thread()
	assert.Len(t, thread, 2, "repeated passes must not duplicate messages")
}

func TestSynchronizeReportsPassOutcomes(t *testing.T) {
	observer := &fakeSyncObserver{}
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	session := &fakeSession{
		identity: models.Identity{ID: 7, FullName: "Ana Souza", Role: models.RoleGuardian},
		token:    "tok-abc",
		authed:   true,
	}
	s := NewSynchronizer(session, messages, defaultDirectory(), nil, observer)

	// No contact selected: the guard short-circuits before a pass runs,
	// so nothing is reported.
	err := s.Synchronize(context.Background())
	assert.Equal(t, appErrors.ErrNoActiveContact, err)
	ok, failed := observer.counts()
	assert.Zero(t, ok)
	assert.Zero(t, failed)

	// SelectContact triggers the first pass, then one explicit refresh.
	selectThrough(t, s)
	require.NoError(t, s.Synchronize(context.Background()))

	messages.mu.Lock()
	messages.inboxErr = appErrors.ErrUpstreamUnavailable
	messages.mu.Unlock()
	require.Error(t, s.Synchronize(context.Background()))

	ok, failed = observer.counts()
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestSynchronizeFailureKeepsPreviousThreadStale(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	messages.mu.Lock()
	messages.inboxErr = appErrors.ErrUpstreamUnavailable
	messages.mu.Unlock()

	err := s.Synchronize(context.Background())
	require.Error(t, err)

	_, thread, syncedAt, stale := s.Thread()
	assert.True(t, stale)
	require.Len(t, thread, 1, "previous thread stays available")
	assert.Equal(t, "oi", thread[0].Body)
	assert.NotNil(t, syncedAt)
}

func TestSynchronizeRejectsOverlap(t *testing.T) {
	messages := &fakeMessages{
		inbox:        []models.Message{msg(1, 42, 7, "oi", at(10))},
		inboxStarted: make(chan struct{}),
		inboxRelease: make(chan struct{}),
	}
	directory := defaultDirectory()
	s, _ := newTestSynchronizer(messages, directory)

	// Selection without the initial sync: seed via SelectContact in a
	// goroutine since it synchronizes immediately.
	_, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.SelectClass(context.Background(), 10)
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() { first <- s.SelectContact(context.Background(), 42) }()
	<-messages.inboxStarted

	err = s.Synchronize(context.Background())
	assert.Equal(t, appErrors.ErrSyncInFlight, err)

	close(messages.inboxRelease)
	require.NoError(t, <-first)
}

func TestSynchronizeWithoutContact(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())
	err := s.Synchronize(context.Background())
	assert.Equal(t, appErrors.ErrNoActiveContact, err)
}

func TestSynchronizeAfterSignOutDiscardsResult(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	s, session := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	messages.mu.Lock()
	messages.inboxStarted = make(chan struct{})
	messages.inboxRelease = make(chan struct{})
	messages.inbox = append(messages.inbox, msg(2, 42, 7, "tarde demais", at(20)))
	messages.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.Synchronize(context.Background()) }()
	<-messages.inboxStarted

	session.signOut()
	close(messages.inboxRelease)
	<-done

	_, thread, _, _ := s.Thread()
	require.Len(t, thread, 1, "a pass resolving after sign-out must not write")
	assert.Equal(t, "oi", thread[0].Body)
}

func TestSelectSchoolClearsDescendants(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	_, err := s.SelectSchool(context.Background(), 2)
	require.NoError(t, err)

	school, class, contact, classes, contacts := s.Selection()
	require.NotNil(t, school)
	assert.Equal(t, int64(2), school.ID)
	assert.Nil(t, class)
	assert.Nil(t, contact)
	assert.NotEmpty(t, classes)
	assert.Empty(t, contacts)

	threadContact, thread, syncedAt, _ := s.Thread()
	assert.Nil(t, threadContact)
	assert.Empty(t, thread)
	assert.Nil(t, syncedAt)
}

func TestSelectClassBuildsContactsFromTeachersAndGuardians(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())
	_, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)

	contacts, err := s.SelectClass(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, models.RoleTeacher, contacts[0].Role)
	assert.Equal(t, "Carlos Lima", contacts[0].FullName)
	assert.Equal(t, models.RoleGuardian, contacts[1].Role)
}

func TestSelectClassRejectsForeignClass(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())
	_, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)

	_, err = s.SelectClass(context.Background(), 999)
	require.Error(t, err)
}

func TestSelectClassWithoutSchool(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())
	_, err := s.SelectClass(context.Background(), 10)
	require.Error(t, err)
}

func TestSelectContactRejectsForeignContact(t *testing.T) {
	s, _ := newTestSynchronizer(&fakeMessages{}, defaultDirectory())
	_, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.SelectClass(context.Background(), 10)
	require.NoError(t, err)

	err = s.SelectContact(context.Background(), 12345)
	require.Error(t, err)
}

func TestSendRejectsEmptyBodyWithoutUpstreamCall(t *testing.T) {
	messages := &fakeMessages{}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	_, err := s.Send(context.Background(), "", "   ", models.MediaText)
	assert.Equal(t, appErrors.ErrEmptyMessage, err)
	assert.Zero(t, messages.sendCalls)
}

func TestSendWithoutContact(t *testing.T) {
	messages := &fakeMessages{}
	s, _ := newTestSynchronizer(messages, defaultDirectory())

	_, err := s.Send(context.Background(), "", "olá", models.MediaText)
	assert.Equal(t, appErrors.ErrNoActiveContact, err)
	assert.Zero(t, messages.sendCalls)
}

func TestSendRefreshesThreadThroughServer(t *testing.T) {
	messages := &fakeMessages{
		inbox: []models.Message{msg(1, 42, 7, "oi", at(10))},
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	created, err := s.Send(context.Background(), "", "Olá, professor", "")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.MediaText, created.MediaKind, "empty media kind defaults to text")

	_, thread, _, _ := s.Thread()
	require.Len(t, thread, 2)
	assert.Equal(t, "Olá, professor", thread[1].Body)
}

func TestSendFailureLeavesThreadUntouched(t *testing.T) {
	messages := &fakeMessages{
		inbox:   []models.Message{msg(1, 42, 7, "oi", at(10))},
		sendErr: appErrors.ErrUpstreamUnavailable,
	}
	s, _ := newTestSynchronizer(messages, defaultDirectory())
	selectThrough(t, s)

	_, err := s.Send(context.Background(), "", "não vai", models.MediaText)
	require.Error(t, err)

	_, thread, _, stale := s.Thread()
	require.Len(t, thread, 1, "no optimistic insertion on failure")
	assert.False(t, stale)
}

func TestGuardianSendsHelloScenario(t *testing.T) {
	// A guardian signs in, walks school → class → teacher, and sends a
	// first message; the thread shows it after the server round-trip.
	messages := &fakeMessages{}
	s, _ := newTestSynchronizer(messages, defaultDirectory())

	classes, err := s.SelectSchool(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, classes, 1)

	contacts, err := s.SelectClass(context.Background(), classes[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, contacts)

	require.NoError(t, s.SelectContact(context.Background(), contacts[0].UserID))

	created, err := s.Send(context.Background(), "Primeiro contato", "Olá!", models.MediaText)
	require.NoError(t, err)
	assert.Equal(t, "Olá!", created.Body)

	contact, thread, syncedAt, stale := s.Thread()
	require.NotNil(t, contact)
	assert.Equal(t, "Carlos Lima", contact.FullName)
	require.Len(t, thread, 1)
	assert.True(t, thread[0].OutboundFor(7))
	assert.NotNil(t, syncedAt)
	assert.False(t, stale)
}
