package student

import (
	"testing"
	"time"
)

// setNow pins the package clock for the duration of one test.
func setNow(t *testing.T, now time.Time) {
	orig := NowFunc
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = orig })
}

func makeStudent(id, name, stage, level string) Student {
	return Student{
		ID:             id,
		Name:           name,
		ParentPhone:    "01012345678",
		Stage:          stage,
		GradeLevel:     level,
		EnrollmentDate: "2023-09-01",
	}
}

func makeGrade(studentID string, score, total float64, date string) Grade {
	return Grade{
		ID:        "g-" + studentID + "-" + date,
		StudentID: studentID,
		Subject:   "القرآن الكريم",
		Score:     score,
		Total:     total,
		Date:      date,
		Kind:      GradeQuiz,
	}
}

func makeAttendance(studentID, date, status string) Attendance {
	return Attendance{
		ID:        "a-" + studentID + "-" + date,
		StudentID: studentID,
		Date:      date,
		Status:    status,
	}
}

func makePayment(studentID, month, status string, amount float64) Payment {
	return Payment{
		ID:        "p-" + studentID + "-" + month,
		StudentID: studentID,
		Month:     month,
		Status:    status,
		Amount:    amount,
	}
}
