package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mrdaoud/tadrees/core"
)

// DateLayout is the zero-padded ISO day format used for every date field.
// Dates are kept as strings on purpose: record views are ordered by
// lexicographic comparison, which is only valid on this layout.
const DateLayout = "2006-01-02"

// NowFunc returns the current wall-clock time; mockable in tests.
var NowFunc = time.Now

// Today returns the current date in DateLayout.
func Today() string {
	return NowFunc().Format(DateLayout)
}

// Education stages
const (
	StagePrimary = "primary"
	StagePrep    = "prep"
)

// GradeLevels enumerates the valid grade-level labels per education stage.
var GradeLevels = map[string][]string{
	StagePrimary: {"الصف الرابع الابتدائي", "الصف الخامس الابتدائي", "الصف السادس الابتدائي"},
	StagePrep:    {"الصف الأول الإعدادي", "الصف الثاني الإعدادي", "الصف الثالث الإعدادي"},
}

// ValidGradeLevel reports whether label belongs to the enumeration of stage.
func ValidGradeLevel(stage, label string) bool {
	for _, lvl := range GradeLevels[stage] {
		if lvl == label {
			return true
		}
	}
	return false
}

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Payment statuses
const (
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
	PaymentOverdue = "overdue"
)

// Grade kinds
const (
	GradeQuiz = "quiz"
	GradeExam = "exam"
)

type Student struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ParentPhone    string `json:"parent_phone"`
	Stage          string `json:"stage"`
	GradeLevel     string `json:"grade_level"`
	EnrollmentDate string `json:"enrollment_date"`
}

type Grade struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Subject   string  `json:"subject"`
	Score     float64 `json:"score"`
	Total     float64 `json:"total"`
	Date      string  `json:"date"`
	Kind      string  `json:"kind"`
	Note      string  `json:"note,omitempty"`
}

// Percent returns the grade as a percentage; the zero-total guard yields an
// invalid null.Float64 rather than dividing.
func (g Grade) Percent() null.Float64 {
	if g.Total == 0 {
		return null.Float64{}
	}
	return null.Float64From(g.Score / g.Total * 100)
}

type Attendance struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type Payment struct {
	ID        string      `json:"id"`
	StudentID string      `json:"student_id"`
	Month     string      `json:"month"` // localized period label, also the join key
	Status    string      `json:"status"`
	Amount    float64     `json:"amount"`
	PaidAt    null.String `json:"paid_at,omitempty"`
	DueDate   string      `json:"due_date,omitempty"`
	Method    string      `json:"method,omitempty"`
}

type Note struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
}

// Snapshot is the full record-store state at one point in time. All
// aggregations are pure functions over a Snapshot.
type Snapshot struct {
	Students   []Student    `json:"students"`
	Grades     []Grade      `json:"grades"`
	Attendance []Attendance `json:"attendance"`
	Payments   []Payment    `json:"payments"`
	Notes      []Note       `json:"notes"`
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required"`
	ParentPhone string `json:"parent_phone" validate:"required,localphone"`
	Stage       string `json:"stage" validate:"required,stage"`
	GradeLevel  string `json:"grade_level" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. All fields are replaced except the id and enrollment date.
type UpdateStudent struct {
	Name        string `json:"name" validate:"required"`
	ParentPhone string `json:"parent_phone" validate:"required,localphone"`
	Stage       string `json:"stage" validate:"required,stage"`
	GradeLevel  string `json:"grade_level" validate:"required"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.ParentPhone = core.CleanString(us.ParentPhone)
	return validate.Struct(us)
}

// NewGrade records a recitation/quiz result. Total defaults when omitted.
// Score is required; an omitted or zero score is rejected rather than
// recorded as 0 and announced to the parent.
type NewGrade struct {
	StudentID string  `json:"student_id" validate:"required"`
	Subject   string  `json:"subject" validate:"required"`
	Score     float64 `json:"score" validate:"required,gt=0"`
	Total     float64 `json:"total" validate:"omitempty,gt=0"`
	Kind      string  `json:"kind" validate:"omitempty,oneof=quiz exam"`
	Note      string  `json:"note"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Subject = core.CleanString(ng.Subject)
	return validate.Struct(ng)
}

// NewPayment records a received monthly subscription. Status is always forced
// to paid and paidAt to today at creation time.
type NewPayment struct {
	StudentID string  `json:"student_id" validate:"required"`
	Month     string  `json:"month"` // defaults to the current period label
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Month = core.CleanString(np.Month)
	return validate.Struct(np)
}

// MarkAttendance is the daily attendance upsert input. Date defaults to today.
type MarkAttendance struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
	Date      string `json:"date" validate:"omitempty,dateiso"`
}

func (ma *MarkAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ma)
}

// NewNote is a free-text teacher note on a student.
type NewNote struct {
	StudentID string `json:"student_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Author    string `json:"author"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Content = core.CleanString(nn.Content)
	nn.Author = core.CleanString(nn.Author)
	return validate.Struct(nn)
}
