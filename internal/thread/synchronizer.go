package thread

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/upstream"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

// Session is the read-only view of the session authority the synchronizer
// depends on. It never sees the raw credential outside transport use.
type Session interface {
	CurrentIdentity() (models.Identity, bool)
	Token() (string, bool)
	Epoch() uint64
}

// MessageClient is the slice of the upstream client covering messaging.
type MessageClient interface {
	Inbox(ctx context.Context, token string) ([]models.Message, error)
	Sent(ctx context.Context, token string) ([]models.Message, error)
	Send(ctx context.Context, token string, payload upstream.SendMessagePayload) (*models.Message, error)
	MarkRead(ctx context.Context, token string, messageID int64) (*models.Message, error)
}

// DirectoryClient is the slice of the upstream client covering the
// school/class/contact hierarchy.
type DirectoryClient interface {
	SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error)
	ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error)
	ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error)
}

// SyncObserver receives the duration and outcome of each completed
// synchronization pass.
type SyncObserver interface {
	ObserveSync(duration time.Duration, err error)
}

// Synchronizer owns the conversation state for one session: the cascading
// school → class → contact selection and the merged, time-ordered message
// thread with the active contact, kept fresh by Synchronize passes.
type Synchronizer struct {
	session   Session
	messages  MessageClient
	directory DirectoryClient
	logger    *zap.Logger
	observer  SyncObserver

	mu       sync.Mutex
	school   *models.School
	classes  []models.Class
	class    *models.Class
	contacts []models.Contact
	contact  *models.Contact
	thread   []models.Message
	syncedAt *time.Time
	stale    bool
	selEpoch uint64
	syncing  bool
}

// NewSynchronizer builds a synchronizer bound to one session. observer may
// be nil.
func NewSynchronizer(session Session, messages MessageClient, directory DirectoryClient, logger *zap.Logger, observer SyncObserver) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		session:   session,
		messages:  messages,
		directory: directory,
		logger:    logger,
		observer:  observer,
	}
}

// SelectSchool sets the top level of the selection context and loads the
// school's class list. All descendant selections, the contact list, and
// the thread are cleared.
func (s *Synchronizer) SelectSchool(ctx context.Context, schoolID int64) ([]models.Class, error) {
	token, ok := s.session.Token()
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}

	classes, err := s.directory.SchoolClasses(ctx, token, schoolID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.school = &models.School{ID: schoolID}
	s.classes = classes
	s.class = nil
	s.contacts = nil
	s.contact = nil
	s.thread = nil
	s.syncedAt = nil
	s.stale = false
	s.selEpoch++
	s.mu.Unlock()
	return classes, nil
}

// SelectClass sets the class level and materializes the contact list from
// the class's teachers and its students' guardians. The contact selection
// and thread are cleared.
func (s *Synchronizer) SelectClass(ctx context.Context, classID int64) ([]models.Contact, error) {
	token, ok := s.session.Token()
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}

	s.mu.Lock()
	if s.school == nil {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "no school selected")
	}
	var selected *models.Class
	for i := range s.classes {
		if s.classes[i].ID == classID {
			selected = &s.classes[i]
			break
		}
	}
	s.mu.Unlock()
	if selected == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not in selected school")
	}

	teachers, err := s.directory.ClassTeachers(ctx, token, classID)
	if err != nil {
		return nil, err
	}
	guardians, err := s.directory.ClassGuardians(ctx, token, classID)
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(teachers)+len(guardians))
	for _, t := range teachers {
		contact := models.Contact{UserID: t.UserID, Role: models.RoleTeacher}
		if t.User != nil {
			contact.FullName = t.User.FullName
			contact.Email = t.User.Email
		}
		contacts = append(contacts, contact)
	}
	for _, g := range guardians {
		contact := models.Contact{UserID: g.UserID, Role: models.RoleGuardian}
		if g.User != nil {
			contact.FullName = g.User.FullName
			contact.Email = g.User.Email
		}
		contacts = append(contacts, contact)
	}

	class := *selected
	s.mu.Lock()
	s.class = &class
	s.contacts = contacts
	s.contact = nil
	s.thread = nil
	s.syncedAt = nil
	s.stale = false
	s.selEpoch++
	s.mu.Unlock()
	return contacts, nil
}

// SelectContact sets the conversation partner and triggers an immediate
// synchronization pass. The selection stands even if that first pass
// fails; the error is returned for the caller to surface.
func (s *Synchronizer) SelectContact(ctx context.Context, contactID int64) error {
	s.mu.Lock()
	if s.class == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "no class selected")
	}
	var selected *models.Contact
	for i := range s.contacts {
		if s.contacts[i].UserID == contactID {
			selected = &s.contacts[i]
			break
		}
	}
	if selected == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "contact not in selected class")
	}
	contact := *selected
	s.contact = &contact
	s.thread = nil
	s.syncedAt = nil
	s.stale = false
	s.selEpoch++
	s.mu.Unlock()

	return s.Synchronize(ctx)
}

// Synchronize fetches the inbox and sent collections concurrently, joins
// them, filters to the active contact pair, and replaces the thread in
// ascending sent-time order. A failing fetch leaves the previous thread in
// place and marks it stale. At most one pass runs at a time; overlapping
// callers get ErrSyncInFlight. A pass that resolves after the selection or
// session changed is discarded.
func (s *Synchronizer) Synchronize(ctx context.Context) error {
	s.mu.Lock()
	if s.contact == nil {
		s.mu.Unlock()
		return appErrors.ErrNoActiveContact
	}
	if s.syncing {
		s.mu.Unlock()
		return appErrors.ErrSyncInFlight
	}
	s.syncing = true
	contactID := s.contact.UserID
	selEpoch := s.selEpoch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	start := time.Now()
	err := s.runPass(ctx, contactID, selEpoch)
	if s.observer != nil {
		s.observer.ObserveSync(time.Since(start), err)
	}
	return err
}

func (s *Synchronizer) runPass(ctx context.Context, contactID int64, selEpoch uint64) error {
	identity, ok := s.session.CurrentIdentity()
	if !ok {
		return appErrors.ErrUnauthorized
	}
	token, ok := s.session.Token()
	if !ok {
		return appErrors.ErrUnauthorized
	}
	sessionEpoch := s.session.Epoch()

	var (
		wg      sync.WaitGroup
		inbox   []models.Message
		sent    []models.Message
		inErr   error
		sentErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		inbox, inErr = s.messages.Inbox(ctx, token)
	}()
	go func() {
		defer wg.Done()
		sent, sentErr = s.messages.Sent(ctx, token)
	}()
	wg.Wait()

	if inErr != nil || sentErr != nil {
		err := inErr
		if err == nil {
			err = sentErr
		}
		s.mu.Lock()
		if s.selEpoch == selEpoch {
			s.stale = true
		}
		s.mu.Unlock()
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "message refresh failed")
	}

	// Concatenation order (inbox first, then sent) fixes tie ordering:
	// the sort below is stable.
	merged := make([]models.Message, 0, len(inbox)+len(sent))
	for _, m := range inbox {
		if m.BetweenPair(identity.ID, contactID) {
			merged = append(merged, m)
		}
	}
	for _, m := range sent {
		if m.BetweenPair(identity.ID, contactID) {
			merged = append(merged, m)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SentAt.Before(merged[j].SentAt)
	})

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selEpoch != selEpoch || s.session.Epoch() != sessionEpoch {
		// Selection changed or session signed out mid-flight; the
		// response belongs to a defunct context.
		return nil
	}
	s.thread = merged
	s.syncedAt = &now
	s.stale = false
	return nil
}

// Send posts a message to the active contact. The body must be non-empty
// and a contact must be selected; both are checked before any network
// call. On success the thread is refreshed through the server, never by
// local insertion. On failure the caller's input is untouched.
func (s *Synchronizer) Send(ctx context.Context, subject, body string, kind models.MediaKind) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, appErrors.ErrEmptyMessage
	}
	if kind == "" {
		kind = models.MediaText
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown media kind")
	}

	s.mu.Lock()
	if s.contact == nil {
		s.mu.Unlock()
		return nil, appErrors.ErrNoActiveContact
	}
	recipientID := s.contact.UserID
	s.mu.Unlock()

	token, ok := s.session.Token()
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}

	created, err := s.messages.Send(ctx, token, upstream.SendMessagePayload{
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		MediaKind:   kind,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Synchronize(ctx); err != nil && err != appErrors.ErrSyncInFlight {
		s.logger.Warn("post-send refresh failed", zap.Error(err))
	}
	return created, nil
}

// MarkRead confirms a message's read receipt and refreshes the thread.
func (s *Synchronizer) MarkRead(ctx context.Context, messageID int64) (*models.Message, error) {
	token, ok := s.session.Token()
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	updated, err := s.messages.MarkRead(ctx, token, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.Synchronize(ctx); err != nil && err != appErrors.ErrSyncInFlight && err != appErrors.ErrNoActiveContact {
		s.logger.Warn("post-read refresh failed", zap.Error(err))
	}
	return updated, nil
}

// Selection returns a copy of the current cascading selection state.
func (s *Synchronizer) Selection() (school *models.School, class *models.Class, contact *models.Contact, classes []models.Class, contacts []models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.school != nil {
		copySchool := *s.school
		school = &copySchool
	}
	if s.class != nil {
		copyClass := *s.class
		class = &copyClass
	}
	if s.contact != nil {
		copyContact := *s.contact
		contact = &copyContact
	}
	classes = append(classes, s.classes...)
	contacts = append(contacts, s.contacts...)
	return
}

// Thread returns a copy of the materialized thread plus its freshness.
func (s *Synchronizer) Thread() (contact *models.Contact, messages []models.Message, syncedAt *time.Time, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contact != nil {
		copyContact := *s.contact
		contact = &copyContact
	}
	messages = append(messages, s.thread...)
	if s.syncedAt != nil {
		copyTime := *s.syncedAt
		syncedAt = &copyTime
	}
	return contact, messages, syncedAt, s.stale
}
