package inmemdb

import (
	"github.com/mrdaoud/tadrees/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.students = append(repo.db.students, s)
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, len(repo.db.students))
	copy(students, repo.db.students)
	return students, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByParentPhone(phone string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// first match wins when duplicate parent phones exist
	for _, s := range repo.db.students {
		if s.ParentPhone == phone {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, orig := range repo.db.students {
		if orig.ID == s.ID {
			repo.db.students[i] = s
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

// DeleteStudent removes the student and every dependent row under a single
// lock, so the cascade is atomic from the caller's perspective.
func (repo *studentRepository) DeleteStudent(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var found bool
	students := repo.db.students[:0]
	for _, s := range repo.db.students {
		if s.ID == id {
			found = true
			continue
		}
		students = append(students, s)
	}
	if !found {
		return student.ErrNotFound
	}
	repo.db.students = students

	grades := repo.db.grades[:0]
	for _, g := range repo.db.grades {
		if g.StudentID != id {
			grades = append(grades, g)
		}
	}
	repo.db.grades = grades

	attendance := repo.db.attendance[:0]
	for _, a := range repo.db.attendance {
		if a.StudentID != id {
			attendance = append(attendance, a)
		}
	}
	repo.db.attendance = attendance

	payments := repo.db.payments[:0]
	for _, p := range repo.db.payments {
		if p.StudentID != id {
			payments = append(payments, p)
		}
	}
	repo.db.payments = payments

	notes := repo.db.notes[:0]
	for _, n := range repo.db.notes {
		if n.StudentID != id {
			notes = append(notes, n)
		}
	}
	repo.db.notes = notes

	return nil
}

func (repo *studentRepository) CreateGrade(g student.Grade) (student.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// most recent first
	repo.db.grades = append([]student.Grade{g}, repo.db.grades...)
	return g, nil
}

func (repo *studentRepository) CreatePayment(p student.Payment) (student.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// most recent first
	repo.db.payments = append([]student.Payment{p}, repo.db.payments...)
	return p, nil
}

func (repo *studentRepository) UpsertAttendance(a student.Attendance) (student.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, orig := range repo.db.attendance {
		if orig.StudentID == a.StudentID && orig.Date == a.Date {
			repo.db.attendance[i].Status = a.Status
			return repo.db.attendance[i], nil
		}
	}
	repo.db.attendance = append(repo.db.attendance, a)
	return a, nil
}

func (repo *studentRepository) CreateNote(n student.Note) (student.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.notes = append(repo.db.notes, n)
	return n, nil
}

func (repo *studentRepository) Snapshot() (student.Snapshot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	snap := student.Snapshot{
		Students:   make([]student.Student, len(repo.db.students)),
		Grades:     make([]student.Grade, len(repo.db.grades)),
		Attendance: make([]student.Attendance, len(repo.db.attendance)),
		Payments:   make([]student.Payment, len(repo.db.payments)),
		Notes:      make([]student.Note, len(repo.db.notes)),
	}
	copy(snap.Students, repo.db.students)
	copy(snap.Grades, repo.db.grades)
	copy(snap.Attendance, repo.db.attendance)
	copy(snap.Payments, repo.db.payments)
	copy(snap.Notes, repo.db.notes)
	return snap, nil
}
