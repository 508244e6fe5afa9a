package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mrdaoud/tadrees/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

type (
	studentRow struct {
		ID             string `db:"id"`
		Name           string `db:"name"`
		ParentPhone    string `db:"parent_phone"`
		Stage          string `db:"stage"`
		GradeLevel     string `db:"grade_level"`
		EnrollmentDate string `db:"enrollment_date"`
	}

	gradeRow struct {
		ID        string  `db:"id"`
		StudentID string  `db:"student_id"`
		Subject   string  `db:"subject"`
		Score     float64 `db:"score"`
		Total     float64 `db:"total"`
		Date      string  `db:"date"`
		Kind      string  `db:"kind"`
		Note      string  `db:"note"`
	}

	attendanceRow struct {
		ID        string `db:"id"`
		StudentID string `db:"student_id"`
		Date      string `db:"date"`
		Status    string `db:"status"`
	}

	paymentRow struct {
		ID        string      `db:"id"`
		StudentID string      `db:"student_id"`
		Month     string      `db:"month"`
		Status    string      `db:"status"`
		Amount    float64     `db:"amount"`
		PaidAt    null.String `db:"paid_at"`
		DueDate   string      `db:"due_date"`
		Method    string      `db:"method"`
	}

	noteRow struct {
		ID        string `db:"id"`
		StudentID string `db:"student_id"`
		Date      string `db:"date"`
		Content   string `db:"content"`
		Author    string `db:"author"`
	}
)

func (r studentRow) toStudent() student.Student { return student.Student(r) }
func (r gradeRow) toGrade() student.Grade       { return student.Grade(r) }
func (r attendanceRow) toAttendance() student.Attendance {
	return student.Attendance(r)
}
func (r paymentRow) toPayment() student.Payment { return student.Payment(r) }
func (r noteRow) toNote() student.Note          { return student.Note(r) }

const studentColumns = "id, name, parent_phone, stage, grade_level, enrollment_date"

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	_, err := repo.db.Exec(
		"INSERT INTO student (id, name, parent_phone, stage, grade_level, enrollment_date) VALUES ($1, $2, $3, $4, $5, $6)",
		s.ID, s.Name, s.ParentPhone, s.Stage, s.GradeLevel, s.EnrollmentDate,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.Select(&rows, "SELECT "+studentColumns+" FROM student ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, "SELECT "+studentColumns+" FROM student WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student by ID")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByParentPhone(phone string) (student.Student, error) {
	// first match wins when duplicate parent phones exist
	var row studentRow
	err := repo.db.Get(
		&row,
		"SELECT "+studentColumns+" FROM student WHERE parent_phone = $1 ORDER BY created_at LIMIT 1",
		phone,
	)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student by parent phone")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	res, err := repo.db.Exec(
		"UPDATE student SET name = $2, parent_phone = $3, stage = $4, grade_level = $5 WHERE id = $1",
		s.ID, s.Name, s.ParentPhone, s.Stage, s.GradeLevel,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

// DeleteStudent relies on ON DELETE CASCADE to drop every dependent row in
// the same transaction as the student row itself.
func (repo *studentRepository) DeleteStudent(id string) error {
	res, err := repo.db.Exec("DELETE FROM student WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) CreateGrade(g student.Grade) (student.Grade, error) {
	_, err := repo.db.Exec(
		"INSERT INTO grade (id, student_id, subject, score, total, date, kind, note) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		g.ID, g.StudentID, g.Subject, g.Score, g.Total, g.Date, g.Kind, g.Note,
	)
	if err != nil {
		return student.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *studentRepository) CreatePayment(p student.Payment) (student.Payment, error) {
	_, err := repo.db.Exec(
		"INSERT INTO payment (id, student_id, month, status, amount, paid_at, due_date, method) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.StudentID, p.Month, p.Status, p.Amount, p.PaidAt, p.DueDate, p.Method,
	)
	if err != nil {
		return student.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *studentRepository) UpsertAttendance(a student.Attendance) (student.Attendance, error) {
	var row attendanceRow
	err := repo.db.Get(
		&row,
		`INSERT INTO attendance (id, student_id, date, status) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status
		 RETURNING id, student_id, date, status`,
		a.ID, a.StudentID, a.Date, a.Status,
	)
	if err != nil {
		return student.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return row.toAttendance(), nil
}

func (repo *studentRepository) CreateNote(n student.Note) (student.Note, error) {
	_, err := repo.db.Exec(
		"INSERT INTO note (id, student_id, date, content, author) VALUES ($1, $2, $3, $4, $5)",
		n.ID, n.StudentID, n.Date, n.Content, n.Author,
	)
	if err != nil {
		return student.Note{}, errors.Wrap(err, "inserting note")
	}
	return n, nil
}

func (repo *studentRepository) Snapshot() (student.Snapshot, error) {
	var snap student.Snapshot

	var students []studentRow
	if err := repo.db.Select(&students, "SELECT "+studentColumns+" FROM student ORDER BY created_at"); err != nil {
		return snap, errors.Wrap(err, "querying students")
	}
	snap.Students = make([]student.Student, 0, len(students))
	for _, row := range students {
		snap.Students = append(snap.Students, row.toStudent())
	}

	var grades []gradeRow
	if err := repo.db.Select(&grades, "SELECT id, student_id, subject, score, total, date, kind, note FROM grade ORDER BY created_at DESC"); err != nil {
		return snap, errors.Wrap(err, "querying grades")
	}
	snap.Grades = make([]student.Grade, 0, len(grades))
	for _, row := range grades {
		snap.Grades = append(snap.Grades, row.toGrade())
	}

	var attendance []attendanceRow
	if err := repo.db.Select(&attendance, "SELECT id, student_id, date, status FROM attendance ORDER BY date"); err != nil {
		return snap, errors.Wrap(err, "querying attendance")
	}
	snap.Attendance = make([]student.Attendance, 0, len(attendance))
	for _, row := range attendance {
		snap.Attendance = append(snap.Attendance, row.toAttendance())
	}

	var payments []paymentRow
	if err := repo.db.Select(&payments, "SELECT id, student_id, month, status, amount, paid_at, due_date, method FROM payment ORDER BY created_at DESC"); err != nil {
		return snap, errors.Wrap(err, "querying payments")
	}
	snap.Payments = make([]student.Payment, 0, len(payments))
	for _, row := range payments {
		snap.Payments = append(snap.Payments, row.toPayment())
	}

	var notes []noteRow
	if err := repo.db.Select(&notes, "SELECT id, student_id, date, content, author FROM note ORDER BY date"); err != nil {
		return snap, errors.Wrap(err, "querying notes")
	}
	snap.Notes = make([]student.Note, 0, len(notes))
	for _, row := range notes {
		snap.Notes = append(snap.Notes, row.toNote())
	}

	return snap, nil
}
