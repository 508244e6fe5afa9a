package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "نوفمبر 2024", PeriodLabel(time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "يناير 2025", PeriodLabel(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))

	setNow(t, time.Date(2024, time.November, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "نوفمبر 2024", CurrentPeriodLabel())
}

func TestParsePeriodLabel(t *testing.T) {
	year, month, ok := ParsePeriodLabel("نوفمبر 2024")
	require.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.November, month)

	for _, label := range []string{"", "نوفمبر", "nov 2024", "نوفمبر أكتوبر", "نوفمبر 2024 إضافي"} {
		_, _, ok := ParsePeriodLabel(label)
		assert.False(t, ok, label)
	}
}

func TestAverageScore(t *testing.T) {
	grades := []Grade{
		makeGrade("s1", 18, 20, "2024-11-01"),
		makeGrade("s1", 15, 20, "2024-11-08"),
		makeGrade("s2", 10, 20, "2024-11-01"),
	}

	t.Run("weighted average, not mean of percentages", func(t *testing.T) {
		avg := AverageScore("s1", grades)
		require.True(t, avg.Valid)
		assert.InDelta(t, 82.5, avg.Float64, 0.001)
	})

	t.Run("uneven totals weight by total", func(t *testing.T) {
		uneven := []Grade{
			makeGrade("s3", 10, 10, "2024-11-01"),
			makeGrade("s3", 0, 30, "2024-11-08"),
		}
		avg := AverageScore("s3", uneven)
		require.True(t, avg.Valid)
		// 10/40, not (100% + 0%) / 2
		assert.InDelta(t, 25, avg.Float64, 0.001)
	})

	t.Run("no grades is not a zero", func(t *testing.T) {
		assert.False(t, AverageScore("missing", grades).Valid)
	})

	t.Run("zero total sum guards the division", func(t *testing.T) {
		assert.False(t, AverageScore("s4", []Grade{makeGrade("s4", 0, 0, "2024-11-01")}).Valid)
	})
}

func TestLeaderboard(t *testing.T) {
	s1 := makeStudent("s1", "أحمد", StagePrimary, "الصف الرابع الابتدائي")
	s2 := makeStudent("s2", "فاطمة", StagePrep, "الصف الأول الإعدادي")
	s3 := makeStudent("s3", "محمود", StagePrimary, "الصف الخامس الابتدائي")
	s4 := makeStudent("s4", "زينب", StagePrep, "الصف الثاني الإعدادي")
	students := []Student{s1, s2, s3, s4}

	t.Run("orders by average descending and truncates", func(t *testing.T) {
		grades := []Grade{
			makeGrade("s1", 15, 20, "2024-11-01"),
			makeGrade("s2", 19, 20, "2024-11-01"),
			makeGrade("s3", 18, 20, "2024-11-01"),
			makeGrade("s4", 17, 20, "2024-11-01"),
		}
		ranked := Leaderboard(students, grades, 3)
		require.Len(t, ranked, 3)
		assert.Equal(t, "s2", ranked[0].ID)
		assert.Equal(t, "s3", ranked[1].ID)
		assert.Equal(t, "s4", ranked[2].ID)
	})

	t.Run("ties keep the student order", func(t *testing.T) {
		grades := []Grade{
			makeGrade("s1", 18, 20, "2024-11-01"),
			makeGrade("s2", 18, 20, "2024-11-01"),
			makeGrade("s3", 18, 20, "2024-11-01"),
		}
		ranked := Leaderboard(students, grades, 3)
		require.Len(t, ranked, 3)
		assert.Equal(t, "s1", ranked[0].ID)
		assert.Equal(t, "s2", ranked[1].ID)
		assert.Equal(t, "s3", ranked[2].ID)
	})

	t.Run("students without grades sink to the bottom", func(t *testing.T) {
		grades := []Grade{makeGrade("s4", 5, 20, "2024-11-01")}
		ranked := Leaderboard(students, grades, 4)
		require.Len(t, ranked, 4)
		assert.Equal(t, "s4", ranked[0].ID)
		// graded-less students follow in insertion order with invalid averages
		assert.Equal(t, "s1", ranked[1].ID)
		assert.False(t, ranked[1].Average.Valid)
	})

	t.Run("a zero average ranks with the gradeless", func(t *testing.T) {
		grades := []Grade{makeGrade("s2", 0, 20, "2024-11-01")}
		ranked := Leaderboard(students, grades, 4)
		require.Len(t, ranked, 4)
		// a legitimate 0% and a missing average rank equal; insertion order holds
		assert.Equal(t, "s1", ranked[0].ID)
		assert.Equal(t, "s2", ranked[1].ID)
		assert.True(t, ranked[1].Average.Valid)
	})

	t.Run("fewer students than n", func(t *testing.T) {
		ranked := Leaderboard(students[:2], nil, 3)
		assert.Len(t, ranked, 2)
	})
}

func TestUnpaidStudents(t *testing.T) {
	s1 := makeStudent("s1", "أحمد", StagePrimary, "الصف الرابع الابتدائي")
	s2 := makeStudent("s2", "فاطمة", StagePrep, "الصف الأول الإعدادي")
	s3 := makeStudent("s3", "محمود", StagePrimary, "الصف الخامس الابتدائي")
	students := []Student{s1, s2, s3}

	payments := []Payment{
		makePayment("s1", "نوفمبر 2024", PaymentPaid, 200),
		// unpaid-status row counts the same as no row at all
		makePayment("s2", "نوفمبر 2024", PaymentUnpaid, 200),
		// payment for another period does not cover this one
		makePayment("s3", "أكتوبر 2024", PaymentPaid, 200),
	}

	unpaid := UnpaidStudents(students, payments, "نوفمبر 2024")
	require.Len(t, unpaid, 2)
	assert.Equal(t, "s2", unpaid[0].ID)
	assert.Equal(t, "s3", unpaid[1].ID)
}

func TestFrequentAbsentees(t *testing.T) {
	s1 := makeStudent("s1", "أحمد", StagePrimary, "الصف الرابع الابتدائي")
	s2 := makeStudent("s2", "فاطمة", StagePrep, "الصف الأول الإعدادي")
	students := []Student{s1, s2}

	attendance := []Attendance{
		// s1: exactly at the threshold, not over it
		makeAttendance("s1", "2024-11-03", AttendanceAbsent),
		makeAttendance("s1", "2024-11-04", AttendanceAbsent),
		makeAttendance("s1", "2024-11-05", AttendanceLate),
		// s2: strictly over
		makeAttendance("s2", "2024-11-03", AttendanceAbsent),
		makeAttendance("s2", "2024-11-04", AttendanceAbsent),
		makeAttendance("s2", "2024-11-05", AttendanceAbsent),
	}

	absentees := FrequentAbsentees(students, attendance, 2)
	require.Len(t, absentees, 1)
	assert.Equal(t, "s2", absentees[0].ID)
}

func TestSummarize(t *testing.T) {
	snap := Snapshot{
		Students: []Student{
			makeStudent("s1", "أحمد", StagePrimary, "الصف الرابع الابتدائي"),
			makeStudent("s2", "فاطمة", StagePrep, "الصف الأول الإعدادي"),
			makeStudent("s3", "محمود", StagePrimary, "الصف الخامس الابتدائي"),
		},
		Payments: []Payment{
			makePayment("s1", "نوفمبر 2024", PaymentPaid, 200),
			makePayment("s2", "نوفمبر 2024", PaymentUnpaid, 200),
			makePayment("s3", "أكتوبر 2024", PaymentPaid, 250),
		},
	}

	sum := Summarize(snap)
	assert.Equal(t, 3, sum.TotalStudents)
	assert.Equal(t, 2, sum.PrimaryCount)
	assert.Equal(t, 1, sum.PrepCount)
	assert.Equal(t, float64(450), sum.PaidTotal)
}

func TestFilterStudents(t *testing.T) {
	s1 := makeStudent("s1", "أحمد محمد علي", StagePrimary, "الصف الرابع الابتدائي")
	s1.ParentPhone = "01012345678"
	s2 := makeStudent("s2", "فاطمة حسن", StagePrep, "الصف الأول الإعدادي")
	s2.ParentPhone = "01122334455"
	s3 := makeStudent("s3", "محمود أحمد", StagePrimary, "الصف السادس الابتدائي")
	s3.ParentPhone = "01299887766"
	students := []Student{s1, s2, s3}

	ids := func(matched []Student) []string {
		out := make([]string, 0, len(matched))
		for _, s := range matched {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"empty filter matches all", QueryFilter{}, []string{"s1", "s2", "s3"}},
		{"search by name substring", QueryFilter{Search: "أحمد"}, []string{"s1", "s3"}},
		{"search by phone substring", QueryFilter{Search: "0112"}, []string{"s2"}},
		{"stage", QueryFilter{Stage: StagePrep}, []string{"s2"}},
		{"stage all passes through", QueryFilter{Stage: "all"}, []string{"s1", "s2", "s3"}},
		{"grade level", QueryFilter{GradeLevel: "الصف السادس الابتدائي"}, []string{"s3"}},
		{"criteria are AND-ed", QueryFilter{Search: "أحمد", Stage: StagePrimary, GradeLevel: "الصف الرابع الابتدائي"}, []string{"s1"}},
		{"no match", QueryFilter{Search: "زينب"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterStudents(students, tt.filter)))
		})
	}
}

func TestBuildProfile(t *testing.T) {
	s1 := makeStudent("s1", "أحمد محمد علي", StagePrimary, "الصف الرابع الابتدائي")
	snap := Snapshot{
		Students: []Student{s1, makeStudent("s2", "فاطمة", StagePrep, "الصف الأول الإعدادي")},
		Grades: []Grade{
			makeGrade("s1", 15, 20, "2024-10-01"),
			makeGrade("s1", 18, 20, "2024-11-08"),
			makeGrade("s2", 19, 20, "2024-11-08"),
		},
		Attendance: []Attendance{
			makeAttendance("s1", "2024-11-03", AttendancePresent),
			makeAttendance("s1", "2024-11-10", AttendanceAbsent),
		},
		Payments: []Payment{
			makePayment("s1", "سبتمبر 2024", PaymentPaid, 200),
			makePayment("s1", "نوفمبر 2024", PaymentPaid, 200),
			makePayment("s1", "أكتوبر 2024", PaymentPaid, 200),
		},
		Notes: []Note{
			{ID: "n1", StudentID: "s1", Date: "2024-11-01", Content: "ملاحظة"},
		},
	}

	t.Run("unknown student", func(t *testing.T) {
		_, err := BuildProfile(snap, "missing")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("assembles and sorts the student's records", func(t *testing.T) {
		prof, err := BuildProfile(snap, "s1")
		require.NoError(t, err)

		assert.Equal(t, s1, prof.Student)

		require.Len(t, prof.Grades, 2)
		assert.Equal(t, "2024-11-08", prof.Grades[0].Date)
		assert.Equal(t, "2024-10-01", prof.Grades[1].Date)

		require.Len(t, prof.Attendance, 2)
		assert.Equal(t, "2024-11-10", prof.Attendance[0].Date)

		// payments order by parsed period, newest first
		require.Len(t, prof.Payments, 3)
		assert.Equal(t, "نوفمبر 2024", prof.Payments[0].Month)
		assert.Equal(t, "أكتوبر 2024", prof.Payments[1].Month)
		assert.Equal(t, "سبتمبر 2024", prof.Payments[2].Month)

		require.Len(t, prof.Notes, 1)

		require.True(t, prof.Average.Valid)
		assert.InDelta(t, 82.5, prof.Average.Float64, 0.001)
		assert.Equal(t, float64(33), prof.ScoreSum)
		assert.Equal(t, 1, prof.PresentCount)
		assert.Equal(t, 3, prof.PaymentCount)
	})
}

func TestGradePercent(t *testing.T) {
	p := makeGrade("s1", 18, 20, "2024-11-01").Percent()
	require.True(t, p.Valid)
	assert.InDelta(t, 90, p.Float64, 0.001)

	assert.False(t, Grade{Score: 5}.Percent().Valid)
}

func TestValidGradeLevel(t *testing.T) {
	assert.True(t, ValidGradeLevel(StagePrimary, "الصف الرابع الابتدائي"))
	assert.True(t, ValidGradeLevel(StagePrep, "الصف الثالث الإعدادي"))
	assert.False(t, ValidGradeLevel(StagePrimary, "الصف الأول الإعدادي"))
	assert.False(t, ValidGradeLevel("lol", "الصف الرابع الابتدائي"))
}
