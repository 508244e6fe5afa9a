package student

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/mrdaoud/tadrees/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	// Repository owns the record store. Deletes cascade: removing a student
	// atomically removes every dependent grade/attendance/payment/note row.
	Repository interface {
		CreateStudent(s Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// GetStudentByParentPhone does an exact match; first match wins when
		// duplicate parent phones exist.
		GetStudentByParentPhone(phone string) (Student, error)
		UpdateStudent(s Student) (Student, error)
		DeleteStudent(id string) error
		CreateGrade(g Grade) (Grade, error)
		CreatePayment(p Payment) (Payment, error)
		// UpsertAttendance overwrites the status in place when a record
		// already exists for (studentID, date); at most one record may exist
		// per pair.
		UpsertAttendance(a Attendance) (Attendance, error)
		CreateNote(n Note) (Note, error)
		Snapshot() (Snapshot, error)
	}

	Service struct {
		repo     Repository
		notifSvc core.NotificationService
		conf     *core.Config
	}
)

func NewService(repo Repository, notifSvc core.NotificationService, conf *core.Config) *Service {
	return &Service{repo: repo, notifSvc: notifSvc, conf: conf}
}

// Mutations

func (svc *Service) Create(ns NewStudent) (Student, error) {
	s := Student{
		ID:             uuid.New().String(),
		Name:           ns.Name,
		ParentPhone:    ns.ParentPhone,
		Stage:          ns.Stage,
		GradeLevel:     ns.GradeLevel,
		EnrollmentDate: Today(),
	}
	return svc.repo.CreateStudent(s)
}

func (svc *Service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	orig.Name = us.Name
	orig.ParentPhone = us.ParentPhone
	orig.Stage = us.Stage
	orig.GradeLevel = us.GradeLevel
	return svc.repo.UpdateStudent(orig)
}

func (svc *Service) Delete(id string) error {
	return svc.repo.DeleteStudent(id)
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) GetByParentPhone(phone string) (Student, error) {
	return svc.repo.GetStudentByParentPhone(core.CleanString(phone))
}

func (svc *Service) Filter(filter QueryFilter) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	return FilterStudents(students, filter), nil
}

// AddGrade records a new grade dated today and notifies the parent. Total
// defaults to the configured exam total when omitted.
func (svc *Service) AddGrade(ng NewGrade) (Grade, error) {
	s, err := svc.repo.GetStudentByID(ng.StudentID)
	if err != nil {
		return Grade{}, err
	}
	if ng.Total == 0 {
		ng.Total = svc.conf.DefaultExamTotal
	}
	if ng.Kind == "" {
		ng.Kind = GradeQuiz
	}
	g := Grade{
		ID:        uuid.New().String(),
		StudentID: ng.StudentID,
		Subject:   ng.Subject,
		Score:     ng.Score,
		Total:     ng.Total,
		Date:      Today(),
		Kind:      ng.Kind,
		Note:      ng.Note,
	}
	g, err = svc.repo.CreateGrade(g)
	if err != nil {
		return Grade{}, err
	}

	svc.notify(
		"تحديث درجات",
		fmt.Sprintf("تم رصد درجة التسميع للطالب %s: %s/%s.", s.Name, formatScore(g.Score), formatScore(g.Total)),
		s.ParentPhone,
	)
	return g, nil
}

// AddPayment records a received payment: status is forced to paid and paidAt
// to today. No dedup per (student, period); duplicate rows are allowed.
func (svc *Service) AddPayment(np NewPayment) (Payment, error) {
	s, err := svc.repo.GetStudentByID(np.StudentID)
	if err != nil {
		return Payment{}, err
	}
	if np.Month == "" {
		np.Month = CurrentPeriodLabel()
	}
	p := Payment{
		ID:        uuid.New().String(),
		StudentID: np.StudentID,
		Month:     np.Month,
		Status:    PaymentPaid,
		Amount:    np.Amount,
		PaidAt:    null.StringFrom(Today()),
		Method:    np.Method,
	}
	p, err = svc.repo.CreatePayment(p)
	if err != nil {
		return Payment{}, err
	}

	svc.notify(
		"تأكيد دفع",
		fmt.Sprintf("تم استلام اشتراك شهر %s للطالب %s. شكراً لكم.", p.Month, s.Name),
		s.ParentPhone,
	)
	return p, nil
}

// Mark upserts today's (or the given date's) attendance and notifies the
// parent of the resulting status.
func (svc *Service) Mark(ma MarkAttendance) (Attendance, error) {
	s, err := svc.repo.GetStudentByID(ma.StudentID)
	if err != nil {
		return Attendance{}, err
	}
	if ma.Date == "" {
		ma.Date = Today()
	}
	a := Attendance{
		ID:        uuid.New().String(),
		StudentID: ma.StudentID,
		Date:      ma.Date,
		Status:    ma.Status,
	}
	a, err = svc.repo.UpsertAttendance(a)
	if err != nil {
		return Attendance{}, err
	}

	svc.notify(
		"الحضور والغياب",
		fmt.Sprintf("الطالب %s %s.", s.Name, statusText(a.Status)),
		s.ParentPhone,
	)
	return a, nil
}

func (svc *Service) AddNote(nn NewNote) (Note, error) {
	if _, err := svc.repo.GetStudentByID(nn.StudentID); err != nil {
		return Note{}, err
	}
	if nn.Author == "" {
		nn.Author = svc.conf.TutorName
	}
	n := Note{
		ID:        uuid.New().String(),
		StudentID: nn.StudentID,
		Date:      Today(),
		Content:   nn.Content,
		Author:    nn.Author,
	}
	return svc.repo.CreateNote(n)
}

// Derived data. Every accessor re-reads the store and recomputes; results
// are never cached.

func (svc *Service) Snapshot() (Snapshot, error) {
	return svc.repo.Snapshot()
}

func (svc *Service) Leaderboard() ([]RankedStudent, error) {
	snap, err := svc.repo.Snapshot()
	if err != nil {
		return nil, err
	}
	return Leaderboard(snap.Students, snap.Grades, svc.conf.LeaderboardSize), nil
}

func (svc *Service) Alerts() (Alerts, error) {
	snap, err := svc.repo.Snapshot()
	if err != nil {
		return Alerts{}, err
	}
	return Alerts{
		Unpaid:            UnpaidStudents(snap.Students, snap.Payments, CurrentPeriodLabel()),
		FrequentAbsentees: FrequentAbsentees(snap.Students, snap.Attendance, svc.conf.AbsenceThreshold),
	}, nil
}

func (svc *Service) Stats() (Summary, error) {
	snap, err := svc.repo.Snapshot()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(snap), nil
}

func (svc *Service) Profile(studentID string) (Profile, error) {
	snap, err := svc.repo.Snapshot()
	if err != nil {
		return Profile{}, err
	}
	return BuildProfile(snap, studentID)
}

func (svc *Service) notify(title, body, phone string) {
	svc.notifSvc.Send(core.Notification{
		Title:   title,
		Message: fmt.Sprintf("تحية طيبة من %s 🌹\n%s", svc.conf.TutorName, body),
		Phone:   phone,
	})
}

func statusText(status string) string {
	switch status {
	case AttendancePresent:
		return "حاضر اليوم ✅"
	case AttendanceLate:
		return "تأخر اليوم ⏰"
	default:
		return "غائب اليوم ❌"
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
