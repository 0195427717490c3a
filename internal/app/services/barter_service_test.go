package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/pkg/apperrors"
)

// barterFixture is two parallel KOM201 lecture sections with holders on both
// sides, plus an unrelated MAT203 section.
func barterFixture() *fakeStore {
	store := newFakeStore()
	store.addUser("U1", "Andi")
	store.addUser("U2", "Budi")
	store.addUser("U3", "Citra")
	store.addUser("U4", "Dewi")
	store.addSection(1, "KOM201", "K1")
	store.addSection(2, "KOM201", "K2")
	store.addSection(3, "MAT203", "K1")
	store.enroll("U1", 1)
	store.enroll("U2", 2)
	store.enroll("U3", 2)
	store.enroll("U4", 3)
	return store
}

func newTestBarter(store *fakeStore) (BarterService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewBarterService(store, fakeSections{store}, fakeEnrollments{store}, store, notifier, zerolog.Nop())
	return svc, notifier
}

func mustCreateOffer(t *testing.T, svc BarterService) *models.Offer {
	t.Helper()
	offer, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U1",
		SourceSectionID: 1,
		TargetSectionID: 2,
	})
	if err != nil {
		t.Fatalf("CreateOffer failed: %v", err)
	}
	return offer
}

func TestCreateOffer(t *testing.T) {
	store := barterFixture()
	svc, notifier := newTestBarter(store)

	offer := mustCreateOffer(t, svc)

	if offer.Status != models.OfferStatusOpen {
		t.Errorf("expected open status, got %s", offer.Status)
	}
	if offer.ID == 0 {
		t.Error("expected offer to receive an ID")
	}
	if len(notifier.created) != 1 {
		t.Errorf("expected 1 created notification, got %d", len(notifier.created))
	}
}

func TestCreateOfferRejectsDifferentCourses(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)

	_, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U1",
		SourceSectionID: 1,
		TargetSectionID: 3,
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected validation error for cross-course swap, got %v", err)
	}
}

func TestCreateOfferRejectsSameSection(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)

	_, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U1",
		SourceSectionID: 1,
		TargetSectionID: 1,
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected validation error for same-section swap, got %v", err)
	}
}

func TestCreateOfferRejectsNonHolder(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)

	// U2 holds section 2, not section 1
	_, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U2",
		SourceSectionID: 1,
		TargetSectionID: 2,
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected validation error for offering an unheld section, got %v", err)
	}
}

func TestCreateOfferUnknownSection(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)

	_, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U1",
		SourceSectionID: 1,
		TargetSectionID: 99,
	})
	if !errors.Is(err, apperrors.ErrSectionNotFound) {
		t.Errorf("expected section not found, got %v", err)
	}
}

func TestTakeOfferSwapsEnrollments(t *testing.T) {
	store := barterFixture()
	svc, notifier := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	taken, err := svc.TakeOffer(context.Background(), offer.ID, "U2")
	if err != nil {
		t.Fatalf("TakeOffer failed: %v", err)
	}

	if taken.Status != models.OfferStatusMatched {
		t.Errorf("expected matched status, got %s", taken.Status)
	}
	if taken.TakerNIM == nil || *taken.TakerNIM != "U2" {
		t.Errorf("expected taker U2, got %v", taken.TakerNIM)
	}
	if taken.CompletedAt == nil {
		t.Error("expected completedAt to be set")
	}
	if !store.enrollments["U1"][2] || store.enrollments["U1"][1] {
		t.Error("offerer enrollment did not move from section 1 to 2")
	}
	if !store.enrollments["U2"][1] || store.enrollments["U2"][2] {
		t.Error("taker enrollment did not move from section 2 to 1")
	}

	if len(notifier.matched) != 1 {
		t.Fatalf("expected 1 matched notification, got %d", len(notifier.matched))
	}
	deltas := notifier.deltas[0]
	if len(deltas) != 2 {
		t.Fatalf("expected 2 enrollment deltas, got %d", len(deltas))
	}
	if deltas[0].NIM != "U1" || deltas[0].FromSectionID != 1 || deltas[0].ToSectionID != 2 {
		t.Errorf("unexpected offerer delta: %+v", deltas[0])
	}
	if deltas[1].NIM != "U2" || deltas[1].FromSectionID != 2 || deltas[1].ToSectionID != 1 {
		t.Errorf("unexpected taker delta: %+v", deltas[1])
	}
}

func TestTakeOfferSelfTake(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	_, err := svc.TakeOffer(context.Background(), offer.ID, "U1")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict for self-take, got %v", err)
	}
}

func TestTakeOfferIneligibleTaker(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	// U4 does not hold the target section
	_, err := svc.TakeOffer(context.Background(), offer.ID, "U4")
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected validation error for ineligible taker, got %v", err)
	}

	// Nothing may have moved
	if !store.enrollments["U1"][1] || !store.enrollments["U4"][3] {
		t.Error("failed take must not move any enrollment")
	}
	stored, _ := store.GetByID(context.Background(), offer.ID)
	if stored.Status != models.OfferStatusOpen {
		t.Errorf("failed take must leave the offer open, got %s", stored.Status)
	}
}

func TestTakeOfferNotFound(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)

	_, err := svc.TakeOffer(context.Background(), 42, "U2")
	if !errors.Is(err, apperrors.ErrOfferNotFound) {
		t.Errorf("expected offer not found, got %v", err)
	}
}

func TestTakeCancelledOfferIsConflictNotNotFound(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	if _, err := svc.CancelOffer(context.Background(), offer.ID, "U1"); err != nil {
		t.Fatalf("CancelOffer failed: %v", err)
	}

	_, err := svc.TakeOffer(context.Background(), offer.ID, "U2")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict taking a cancelled offer, got %v", err)
	}
	if errors.Is(err, apperrors.ErrOfferNotFound) {
		t.Error("taking a cancelled offer must never be not-found")
	}
}

func TestCancelOffer(t *testing.T) {
	store := barterFixture()
	svc, notifier := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	cancelled, err := svc.CancelOffer(context.Background(), offer.ID, "U1")
	if err != nil {
		t.Fatalf("CancelOffer failed: %v", err)
	}
	if cancelled.Status != models.OfferStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	// Cancellation never touches enrollments
	if !store.enrollments["U1"][1] {
		t.Error("cancel must not move enrollments")
	}
	if len(notifier.cancelled) != 1 {
		t.Errorf("expected 1 cancelled notification, got %d", len(notifier.cancelled))
	}
}

func TestCancelOfferForbiddenForNonOfferer(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	_, err := svc.CancelOffer(context.Background(), offer.ID, "U2")
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("expected forbidden for non-offerer cancel, got %v", err)
	}
}

func TestCancelOfferTwice(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	if _, err := svc.CancelOffer(context.Background(), offer.ID, "U1"); err != nil {
		t.Fatalf("first CancelOffer failed: %v", err)
	}
	_, err := svc.CancelOffer(context.Background(), offer.ID, "U1")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict on second cancel, got %v", err)
	}
}

func TestListOpenOffersExcludesTerminal(t *testing.T) {
	store := barterFixture()
	svc, _ := newTestBarter(store)
	offer := mustCreateOffer(t, svc)

	open, err := svc.ListOpenOffers(context.Background())
	if err != nil {
		t.Fatalf("ListOpenOffers failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open offer, got %d", len(open))
	}
	if open[0].SourceSection == nil || open[0].SourceSection.ID != 1 {
		t.Error("expected source section to be attached")
	}

	if _, err := svc.TakeOffer(context.Background(), offer.ID, "U2"); err != nil {
		t.Fatalf("TakeOffer failed: %v", err)
	}
	open, err = svc.ListOpenOffers(context.Background())
	if err != nil {
		t.Fatalf("ListOpenOffers failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("expected no open offers after match, got %d", len(open))
	}
}

// TestTakeOfferConcurrent races many eligible takers on one offer. Exactly
// one take must commit; everyone else must observe a conflict, and exactly
// one pair of enrollment moves may remain.
func TestTakeOfferConcurrent(t *testing.T) {
	store := barterFixture()
	svc, notifier := newTestBarter(store)

	// A wide pool of eligible takers all holding the target section
	takers := []string{"U2", "U3"}
	for i := 0; i < 8; i++ {
		nim := "T" + string(rune('A'+i))
		store.addUser(nim, nim)
		store.enroll(nim, 2)
		takers = append(takers, nim)
	}
	offer := mustCreateOffer(t, svc)

	var wg sync.WaitGroup
	results := make(chan error, len(takers))
	for _, taker := range takers {
		wg.Add(1)
		go func(nim string) {
			defer wg.Done()
			_, err := svc.TakeOffer(context.Background(), offer.ID, nim)
			results <- err
		}(taker)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperrors.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 successful take, got %d", successes)
	}
	if conflicts != len(takers)-1 {
		t.Errorf("expected %d conflicts, got %d", len(takers)-1, conflicts)
	}

	stored, _ := store.GetByID(context.Background(), offer.ID)
	if stored.Status != models.OfferStatusMatched {
		t.Errorf("expected matched offer after race, got %s", stored.Status)
	}
	if stored.TakerNIM == nil {
		t.Fatal("expected a winning taker to be recorded")
	}

	// The offerer moved once, the winner moved once, everyone else stayed
	winner := *stored.TakerNIM
	if !store.enrollments["U1"][2] || store.enrollments["U1"][1] {
		t.Error("offerer enrollment inconsistent after race")
	}
	if !store.enrollments[winner][1] || store.enrollments[winner][2] {
		t.Errorf("winner %s enrollment inconsistent after race", winner)
	}
	for _, nim := range takers {
		if nim == winner {
			continue
		}
		if !store.enrollments[nim][2] || store.enrollments[nim][1] {
			t.Errorf("losing taker %s must keep their enrollment", nim)
		}
	}
	if len(notifier.matched) != 1 {
		t.Errorf("expected exactly 1 matched notification, got %d", len(notifier.matched))
	}
}

func TestTakeOfferCrossOfferEnrollmentContention(t *testing.T) {
	store := barterFixture()
	svc, notifier := newTestBarter(store)

	// A third parallel section so U1 can post two offers giving up the
	// same held seat toward different destinations
	store.addSection(4, "KOM201", "K3")
	store.addUser("U5", "Eka")
	store.enroll("U5", 4)

	offerA := mustCreateOffer(t, svc)
	offerB, err := svc.CreateOffer(context.Background(), &dto.CreateOfferRequest{
		OffererNIM:      "U1",
		SourceSectionID: 1,
		TargetSectionID: 4,
	})
	if err != nil {
		t.Fatalf("CreateOffer failed: %v", err)
	}

	if _, err := svc.TakeOffer(context.Background(), offerA.ID, "U2"); err != nil {
		t.Fatalf("TakeOffer on first offer failed: %v", err)
	}

	// U1 no longer holds section 1, so the second swap must abort even
	// though the offer itself is still open
	_, err = svc.TakeOffer(context.Background(), offerB.ID, "U5")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for stale offer, got %v", err)
	}

	stored, _ := store.GetByID(context.Background(), offerB.ID)
	if stored.Status != models.OfferStatusOpen {
		t.Errorf("expected second offer to stay open after abort, got %s", stored.Status)
	}
	if stored.TakerNIM != nil {
		t.Errorf("expected no taker on the aborted offer, got %v", *stored.TakerNIM)
	}
	if !store.enrollments["U5"][4] || store.enrollments["U5"][1] {
		t.Error("losing taker's enrollment must be untouched after abort")
	}
	if !store.enrollments["U1"][2] {
		t.Error("offerer must keep the seat won in the first swap")
	}
	if len(notifier.matched) != 1 {
		t.Errorf("expected exactly 1 matched notification, got %d", len(notifier.matched))
	}
}
