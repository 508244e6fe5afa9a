// Package inmemdb is the default record store: all state lives in memory for
// the lifetime of one session. The sqlx store covers durable deployments.
package inmemdb

import (
	"sync"

	"github.com/mrdaoud/tadrees/core/student"
)

// DB holds the record collections. Insertion-order conventions matter:
// students and attendance append, grades and payments prepend (most recent
// first). Leaderboard tie-breaking relies on the stable student order.
type DB struct {
	mutex      sync.RWMutex
	students   []student.Student
	grades     []student.Grade
	attendance []student.Attendance
	payments   []student.Payment
	notes      []student.Note
}

func Open() (*DB, error) {
	return &DB{
		students:   make([]student.Student, 0),
		grades:     make([]student.Grade, 0),
		attendance: make([]student.Attendance, 0),
		payments:   make([]student.Payment, 0),
		notes:      make([]student.Note, 0),
	}, nil
}
