package services

import (
	"context"
	"sync"
	"time"

	"github.com/krswitch/backend/internal/app/models"
	"github.com/krswitch/backend/internal/pkg/apperrors"
)

// fakeStore is an in-memory implementation of every store port. InSwapTx
// serializes callbacks under one mutex, mirroring the row locking of the
// real store, and rolls offers and enrollments back when the callback fails.
type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	sections    map[int64]*models.Section
	enrollments map[string]map[int64]bool
	offers      map[int64]*models.Offer
	nextOfferID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*models.User),
		sections:    make(map[int64]*models.Section),
		enrollments: make(map[string]map[int64]bool),
		offers:      make(map[int64]*models.Offer),
	}
}

func (s *fakeStore) addUser(nim, name string) {
	s.users[nim] = &models.User{NIM: nim, Name: name}
}

func (s *fakeStore) addSection(id int64, courseCode, classCode string) {
	s.sections[id] = &models.Section{ID: id, CourseCode: courseCode, CourseName: courseCode, ClassCode: classCode}
}

func (s *fakeStore) enroll(nim string, sectionID int64) {
	if s.enrollments[nim] == nil {
		s.enrollments[nim] = make(map[int64]bool)
	}
	s.enrollments[nim][sectionID] = true
}

// UserStore

func (s *fakeStore) GetAll(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*models.User
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *fakeStore) GetByNIM(ctx context.Context, nim string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[nim]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) Exists(ctx context.Context, nim string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[nim]
	return ok, nil
}

// SectionStore

type fakeSections struct{ store *fakeStore }

func (f fakeSections) GetAll(ctx context.Context) ([]*models.Section, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var sections []*models.Section
	for _, sec := range f.store.sections {
		sections = append(sections, sec)
	}
	return sections, nil
}

func (f fakeSections) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	sec, ok := f.store.sections[id]
	if !ok {
		return nil, apperrors.ErrSectionNotFound
	}
	return sec, nil
}

// EnrollmentStore

type fakeEnrollments struct{ store *fakeStore }

func (f fakeEnrollments) GetAll(ctx context.Context) ([]*models.Enrollment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var enrollments []*models.Enrollment
	var id int64
	for nim, sections := range f.store.enrollments {
		for sectionID := range sections {
			id++
			enrollments = append(enrollments, &models.Enrollment{ID: id, NIM: nim, SectionID: sectionID})
		}
	}
	return enrollments, nil
}

func (f fakeEnrollments) GetByNIM(ctx context.Context, nim string) ([]*models.Enrollment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var enrollments []*models.Enrollment
	var id int64
	for sectionID := range f.store.enrollments[nim] {
		id++
		enrollments = append(enrollments, &models.Enrollment{ID: id, NIM: nim, SectionID: sectionID})
	}
	return enrollments, nil
}

func (f fakeEnrollments) IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.enrollments[nim][sectionID], nil
}

// OfferStore

func (s *fakeStore) Create(ctx context.Context, offer *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOfferID++
	offer.ID = s.nextOfferID
	offer.Status = models.OfferStatusOpen
	offer.CreatedAt = time.Now()
	stored := *offer
	s.offers[offer.ID] = &stored
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, apperrors.ErrOfferNotFound
	}
	snapshot := *o
	return &snapshot, nil
}

func (s *fakeStore) ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var offers []*models.Offer
	for _, o := range s.offers {
		if o.Status == status {
			snapshot := *o
			offers = append(offers, &snapshot)
		}
	}
	return offers, nil
}

func (s *fakeStore) InSwapTx(ctx context.Context, fn func(ctx context.Context, tx SwapTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offersBackup := make(map[int64]models.Offer, len(s.offers))
	for id, o := range s.offers {
		offersBackup[id] = *o
	}
	enrollBackup := make(map[string]map[int64]bool, len(s.enrollments))
	for nim, sections := range s.enrollments {
		inner := make(map[int64]bool, len(sections))
		for id, v := range sections {
			inner[id] = v
		}
		enrollBackup[nim] = inner
	}

	err := fn(ctx, &fakeTx{store: s})
	if err != nil {
		s.offers = make(map[int64]*models.Offer, len(offersBackup))
		for id, o := range offersBackup {
			restored := o
			s.offers[id] = &restored
		}
		s.enrollments = enrollBackup
	}
	return err
}

// fakeTx operates on the store's data directly; InSwapTx already holds the
// lock for the duration of the callback.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) OfferForUpdate(ctx context.Context, id int64) (*models.Offer, error) {
	o, ok := t.store.offers[id]
	if !ok {
		return nil, apperrors.ErrOfferNotFound
	}
	snapshot := *o
	return &snapshot, nil
}

func (t *fakeTx) MarkOfferMatched(ctx context.Context, id int64, takerNIM string, completedAt time.Time) error {
	o, ok := t.store.offers[id]
	if !ok || o.Status != models.OfferStatusOpen {
		return apperrors.NewConflictError("offer already taken or cancelled")
	}
	o.Status = models.OfferStatusMatched
	o.TakerNIM = &takerNIM
	o.CompletedAt = &completedAt
	return nil
}

func (t *fakeTx) MarkOfferCancelled(ctx context.Context, id int64) error {
	o, ok := t.store.offers[id]
	if !ok || o.Status != models.OfferStatusOpen {
		return apperrors.NewConflictError("offer already taken or cancelled")
	}
	o.Status = models.OfferStatusCancelled
	return nil
}

func (t *fakeTx) IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error) {
	return t.store.enrollments[nim][sectionID], nil
}

func (t *fakeTx) MoveEnrollment(ctx context.Context, nim string, fromSectionID, toSectionID int64) error {
	held := t.store.enrollments[nim]
	if !held[fromSectionID] {
		return apperrors.NewConflictError("enrollment changed by a concurrent swap")
	}
	if held[toSectionID] {
		return apperrors.NewConflictError("student already holds the destination section")
	}
	delete(held, fromSectionID)
	held[toSectionID] = true
	return nil
}

// recordingNotifier captures events for assertions
type recordingNotifier struct {
	mu        sync.Mutex
	created   []*models.Offer
	matched   []*models.Offer
	cancelled []*models.Offer
	deltas    [][]models.EnrollmentDelta
}

func (n *recordingNotifier) OfferCreated(offer *models.Offer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, offer)
}

func (n *recordingNotifier) OfferMatched(offer *models.Offer, deltas []models.EnrollmentDelta) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matched = append(n.matched, offer)
	n.deltas = append(n.deltas, deltas)
}

func (n *recordingNotifier) OfferCancelled(offer *models.Offer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, offer)
}
