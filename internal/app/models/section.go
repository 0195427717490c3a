package models

// Section represents one scheduled parallel offering of a course.
// The leading character of ClassCode is the type tag (K kuliah, P praktikum,
// R responsi); swaps only ever happen between sections sharing course code and
// type tag. Day, time window and room are carried for display only.
type Section struct {
	ID         int64  `json:"id" db:"id" example:"1"`
	CourseCode string `json:"courseCode" db:"course_code" example:"KOM201"`
	CourseName string `json:"courseName" db:"course_name" example:"Basis Data"`
	ClassCode  string `json:"classCode" db:"class_code" example:"K1"`
	Day        string `json:"day" db:"day" example:"Senin"`
	TimeStart  string `json:"timeStart" db:"time_start" example:"08:00"`
	TimeEnd    string `json:"timeEnd" db:"time_end" example:"10:00"`
	Room       string `json:"room" db:"room" example:"FMIPA 1.1"`
}

// TypeTag returns the one-character section type derived from the class code.
// Returns 0 for an empty class code.
func (s *Section) TypeTag() byte {
	if s.ClassCode == "" {
		return 0
	}
	return s.ClassCode[0]
}

// SameSwapGroup reports whether two sections belong to the same swappable
// slot: same course, same type tag, different section.
func (s *Section) SameSwapGroup(other *Section) bool {
	if other == nil || s.ID == other.ID {
		return false
	}
	return s.CourseCode == other.CourseCode && s.TypeTag() == other.TypeTag()
}
