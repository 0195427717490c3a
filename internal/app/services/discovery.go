package services

import (
	"github.com/krswitch/backend/internal/app/models"
)

// EnrollmentIndex answers "which sections does this student hold" and "which
// students hold this section" in O(1) after an O(n) build. It is a snapshot:
// rebuild it from the enrollment table whenever a consistent view is needed.
type EnrollmentIndex struct {
	byUser    map[string][]int64
	bySection map[int64][]string
}

// BuildEnrollmentIndex constructs the index from a full enrollment snapshot
func BuildEnrollmentIndex(enrollments []*models.Enrollment) *EnrollmentIndex {
	idx := &EnrollmentIndex{
		byUser:    make(map[string][]int64),
		bySection: make(map[int64][]string),
	}
	for _, e := range enrollments {
		idx.byUser[e.NIM] = append(idx.byUser[e.NIM], e.SectionID)
		idx.bySection[e.SectionID] = append(idx.bySection[e.SectionID], e.NIM)
	}
	return idx
}

// SectionsOf returns the section IDs the student currently holds
func (idx *EnrollmentIndex) SectionsOf(nim string) []int64 {
	return idx.byUser[nim]
}

// HoldersOf returns the NIMs of every student enrolled in the section
func (idx *EnrollmentIndex) HoldersOf(sectionID int64) []string {
	return idx.bySection[sectionID]
}

// Holds reports whether the student holds the section in this snapshot
func (idx *EnrollmentIndex) Holds(nim string, sectionID int64) bool {
	for _, id := range idx.byUser[nim] {
		if id == sectionID {
			return true
		}
	}
	return false
}

type swapGroupKey struct {
	CourseCode string
	TypeTag    byte
}

// SectionCatalog partitions sections into swap groups: sections sharing a
// course code and type tag. Only groups of size >= 2 can ever produce a
// swap, so SwapGroups omits singletons.
type SectionCatalog struct {
	byID   map[int64]*models.Section
	groups map[swapGroupKey][]*models.Section
}

// BuildSectionCatalog constructs the catalog from a full section snapshot
func BuildSectionCatalog(sections []*models.Section) *SectionCatalog {
	cat := &SectionCatalog{
		byID:   make(map[int64]*models.Section),
		groups: make(map[swapGroupKey][]*models.Section),
	}
	for _, s := range sections {
		cat.byID[s.ID] = s
		key := swapGroupKey{CourseCode: s.CourseCode, TypeTag: s.TypeTag()}
		cat.groups[key] = append(cat.groups[key], s)
	}
	return cat
}

// SectionByID returns the section for an ID, or nil if unknown
func (c *SectionCatalog) SectionByID(id int64) *models.Section {
	return c.byID[id]
}

// SwapGroups returns every group of parallel sections with at least two
// members. Group order and member order are unspecified.
func (c *SectionCatalog) SwapGroups() [][]*models.Section {
	var groups [][]*models.Section
	for _, group := range c.groups {
		if len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// EnumerateOpportunities produces every legal directed swap as of the given
// catalog and enrollment snapshot. For each unordered section pair within a
// swap group, each holder of one side matched with each distinct holder of
// the other side yields two directed opportunities, one per direction. The
// same student may appear in many opportunities at once; that is valid.
func EnumerateOpportunities(catalog *SectionCatalog, index *EnrollmentIndex) []models.Opportunity {
	var opportunities []models.Opportunity
	for _, group := range catalog.SwapGroups() {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				s1, s2 := group[i], group[j]
				for _, u1 := range index.HoldersOf(s1.ID) {
					for _, u2 := range index.HoldersOf(s2.ID) {
						if u1 == u2 {
							continue
						}
						opportunities = append(opportunities,
							models.Opportunity{
								NIM:             u1,
								PartnerNIM:      u2,
								SourceSectionID: s1.ID,
								TargetSectionID: s2.ID,
								CourseCode:      s1.CourseCode,
								TypeTag:         string(s1.TypeTag()),
							},
							models.Opportunity{
								NIM:             u2,
								PartnerNIM:      u1,
								SourceSectionID: s2.ID,
								TargetSectionID: s1.ID,
								CourseCode:      s1.CourseCode,
								TypeTag:         string(s1.TypeTag()),
							},
						)
					}
				}
			}
		}
	}
	return opportunities
}
