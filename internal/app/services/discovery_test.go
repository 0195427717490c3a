package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
)

func opportunitySet(opportunities []models.Opportunity) map[models.Opportunity]bool {
	set := make(map[models.Opportunity]bool, len(opportunities))
	for _, o := range opportunities {
		set[o] = true
	}
	return set
}

func TestEnumerateOpportunitiesBothDirections(t *testing.T) {
	sections := []*models.Section{
		{ID: 1, CourseCode: "KOM201", ClassCode: "K1"},
		{ID: 2, CourseCode: "KOM201", ClassCode: "K2"},
	}
	enrollments := []*models.Enrollment{
		{NIM: "U1", SectionID: 1},
		{NIM: "U2", SectionID: 2},
	}

	got := EnumerateOpportunities(BuildSectionCatalog(sections), BuildEnrollmentIndex(enrollments))
	if len(got) != 2 {
		t.Fatalf("expected 2 directed opportunities, got %d", len(got))
	}

	set := opportunitySet(got)
	want := []models.Opportunity{
		{NIM: "U1", PartnerNIM: "U2", SourceSectionID: 1, TargetSectionID: 2, CourseCode: "KOM201", TypeTag: "K"},
		{NIM: "U2", PartnerNIM: "U1", SourceSectionID: 2, TargetSectionID: 1, CourseCode: "KOM201", TypeTag: "K"},
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("missing opportunity %+v", w)
		}
	}
}

func TestEnumerateOpportunitiesRespectsGroupBoundaries(t *testing.T) {
	sections := []*models.Section{
		{ID: 1, CourseCode: "KOM201", ClassCode: "K1"},
		{ID: 2, CourseCode: "KOM201", ClassCode: "K2"},
		{ID: 3, CourseCode: "KOM201", ClassCode: "P1"}, // same course, different type
		{ID: 4, CourseCode: "MAT203", ClassCode: "K1"}, // different course
	}
	enrollments := []*models.Enrollment{
		{NIM: "U1", SectionID: 1},
		{NIM: "U2", SectionID: 3},
		{NIM: "U3", SectionID: 4},
	}

	got := EnumerateOpportunities(BuildSectionCatalog(sections), BuildEnrollmentIndex(enrollments))
	for _, o := range got {
		t.Errorf("unexpected opportunity across group boundaries: %+v", o)
	}
}

func TestEnumerateOpportunitiesSkipsSameUser(t *testing.T) {
	sections := []*models.Section{
		{ID: 1, CourseCode: "KOM201", ClassCode: "K1"},
		{ID: 2, CourseCode: "KOM201", ClassCode: "K2"},
	}
	// One student somehow holding both sides produces nothing
	enrollments := []*models.Enrollment{
		{NIM: "U1", SectionID: 1},
		{NIM: "U1", SectionID: 2},
	}

	got := EnumerateOpportunities(BuildSectionCatalog(sections), BuildEnrollmentIndex(enrollments))
	if len(got) != 0 {
		t.Errorf("expected no self-opportunities, got %d", len(got))
	}
}

func TestEnumerateOpportunitiesMultipleHolders(t *testing.T) {
	sections := []*models.Section{
		{ID: 1, CourseCode: "KOM201", ClassCode: "K1"},
		{ID: 2, CourseCode: "KOM201", ClassCode: "K2"},
	}
	enrollments := []*models.Enrollment{
		{NIM: "U1", SectionID: 1},
		{NIM: "U2", SectionID: 2},
		{NIM: "U3", SectionID: 2},
	}

	got := EnumerateOpportunities(BuildSectionCatalog(sections), BuildEnrollmentIndex(enrollments))
	// U1 pairs with U2 and with U3, two directions each
	if len(got) != 4 {
		t.Fatalf("expected 4 opportunities, got %d", len(got))
	}

	// Every opportunity must satisfy the swap invariant against the index
	index := BuildEnrollmentIndex(enrollments)
	catalog := BuildSectionCatalog(sections)
	for _, o := range got {
		if !index.Holds(o.NIM, o.SourceSectionID) {
			t.Errorf("opportunity source not held by %s: %+v", o.NIM, o)
		}
		if !index.Holds(o.PartnerNIM, o.TargetSectionID) {
			t.Errorf("opportunity target not held by partner %s: %+v", o.PartnerNIM, o)
		}
		src := catalog.SectionByID(o.SourceSectionID)
		dst := catalog.SectionByID(o.TargetSectionID)
		if !src.SameSwapGroup(dst) {
			t.Errorf("opportunity crosses swap groups: %+v", o)
		}
	}
}

func TestSwapGroupsExcludeSingletons(t *testing.T) {
	sections := []*models.Section{
		{ID: 1, CourseCode: "KOM201", ClassCode: "K1"},
		{ID: 2, CourseCode: "KOM201", ClassCode: "K2"},
		{ID: 3, CourseCode: "MAT203", ClassCode: "R1"},
	}

	groups := BuildSectionCatalog(sections).SwapGroups()
	if len(groups) != 1 {
		t.Fatalf("expected 1 swap group, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("expected group of 2 sections, got %d", len(groups[0]))
	}
}

func TestDiscoverOpportunitiesService(t *testing.T) {
	store := newFakeStore()
	store.addSection(1, "KOM201", "K1")
	store.addSection(2, "KOM201", "K2")
	store.enroll("U1", 1)
	store.enroll("U2", 2)

	svc := NewCatalogService(store, fakeSections{store}, fakeEnrollments{store}, zerolog.Nop())
	got, err := svc.DiscoverOpportunities(context.Background())
	if err != nil {
		t.Fatalf("DiscoverOpportunities failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 opportunities, got %d", len(got))
	}
}

func TestGetEnrollmentsAttachesSections(t *testing.T) {
	store := newFakeStore()
	store.addSection(1, "KOM201", "K1")
	store.enroll("U1", 1)

	svc := NewCatalogService(store, fakeSections{store}, fakeEnrollments{store}, zerolog.Nop())
	enrollments, err := svc.GetEnrollments(context.Background(), "U1")
	if err != nil {
		t.Fatalf("GetEnrollments failed: %v", err)
	}
	if len(enrollments) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(enrollments))
	}
	if enrollments[0].Section == nil || enrollments[0].Section.CourseCode != "KOM201" {
		t.Error("expected section to be attached to enrollment")
	}
}

func TestEnrollmentIndexSectionsOf(t *testing.T) {
	enrollments := []*models.Enrollment{
		{NIM: "U1", SectionID: 1},
		{NIM: "U1", SectionID: 3},
		{NIM: "U2", SectionID: 2},
	}
	index := BuildEnrollmentIndex(enrollments)

	held := map[int64]bool{}
	for _, id := range index.SectionsOf("U1") {
		held[id] = true
	}
	if len(held) != 2 || !held[1] || !held[3] {
		t.Errorf("expected U1 to hold sections 1 and 3, got %v", index.SectionsOf("U1"))
	}
	if got := index.SectionsOf("U9"); len(got) != 0 {
		t.Errorf("expected no sections for unknown student, got %v", got)
	}
}
