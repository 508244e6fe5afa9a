package student

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/mrdaoud/tadrees/core"
)

// All functions in this file are pure: deterministic over a given snapshot,
// no side effects, recomputed on every call. Nothing here may cache results.

// arabicMonths formats a wall-clock month into the localized period label used
// as the payment join key (e.g. "نوفمبر 2024").
var arabicMonths = map[time.Month]string{
	time.January:   "يناير",
	time.February:  "فبراير",
	time.March:     "مارس",
	time.April:     "أبريل",
	time.May:       "مايو",
	time.June:      "يونيو",
	time.July:      "يوليو",
	time.August:    "أغسطس",
	time.September: "سبتمبر",
	time.October:   "أكتوبر",
	time.November:  "نوفمبر",
	time.December:  "ديسمبر",
}

// PeriodLabel returns the localized "<month> <year>" label for t.
func PeriodLabel(t time.Time) string {
	return arabicMonths[t.Month()] + " " + strconv.Itoa(t.Year())
}

// CurrentPeriodLabel returns the label of the current wall-clock month.
func CurrentPeriodLabel() string {
	return PeriodLabel(NowFunc())
}

// ParsePeriodLabel recovers the (year, month) behind a period label. Labels
// are display strings first and keys second, so unparsable ones are reported
// rather than guessed at.
func ParsePeriodLabel(label string) (year int, month time.Month, ok bool) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	for m, name := range arabicMonths {
		if name == parts[0] {
			return year, m, true
		}
	}
	return 0, 0, false
}

// AverageScore computes a student's overall percentage as a weighted average:
// sum of scores over sum of totals. This is NOT the mean of per-assessment
// percentages; the two differ whenever totals vary between assessments.
// A student with no grades (or an all-zero total sum) yields an invalid
// null.Float64; "no grades yet" is distinct from a legitimate 0%.
func AverageScore(studentID string, grades []Grade) null.Float64 {
	var scoreSum, totalSum float64
	for _, g := range grades {
		if g.StudentID == studentID {
			scoreSum += g.Score
			totalSum += g.Total
		}
	}
	if totalSum == 0 {
		return null.Float64{}
	}
	return null.Float64From(scoreSum / totalSum * 100)
}

// avgOrZero collapses an invalid average to 0 for ranking purposes.
func avgOrZero(f null.Float64) float64 {
	if f.Valid {
		return f.Float64
	}
	return 0
}

// RankedStudent is a leaderboard entry.
type RankedStudent struct {
	Student
	Average null.Float64 `json:"average"`
}

// Leaderboard returns the top n students by average score, descending. The
// sort is stable: ties keep the original student ordering. Students without
// grades rank as zero and sink to the bottom.
func Leaderboard(students []Student, grades []Grade, n int) []RankedStudent {
	ranked := make([]RankedStudent, 0, len(students))
	for _, s := range students {
		ranked = append(ranked, RankedStudent{Student: s, Average: AverageScore(s.ID, grades)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return avgOrZero(ranked[i].Average) > avgOrZero(ranked[j].Average)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// UnpaidStudents returns the students with no paid payment row for the given
// period label. A row with status unpaid/overdue counts the same as no row.
func UnpaidStudents(students []Student, payments []Payment, period string) []Student {
	unpaid := make([]Student, 0)
	for _, s := range students {
		if !hasPaid(payments, s.ID, period) {
			unpaid = append(unpaid, s)
		}
	}
	return unpaid
}

func hasPaid(payments []Payment, studentID, period string) bool {
	for _, p := range payments {
		if p.StudentID == studentID && p.Month == period && p.Status == PaymentPaid {
			return true
		}
	}
	return false
}

// FrequentAbsentees returns the students whose all-time absence count strictly
// exceeds threshold.
func FrequentAbsentees(students []Student, attendance []Attendance, threshold int) []Student {
	absentees := make([]Student, 0)
	for _, s := range students {
		var absences int
		for _, a := range attendance {
			if a.StudentID == s.ID && a.Status == AttendanceAbsent {
				absences++
			}
		}
		if absences > threshold {
			absentees = append(absentees, s)
		}
	}
	return absentees
}

// Alerts bundles the two notification-worthy sets shown on the dashboard.
type Alerts struct {
	Unpaid            []Student `json:"unpaid"`
	FrequentAbsentees []Student `json:"frequent_absentees"`
}

// Summary holds the dashboard counters.
type Summary struct {
	TotalStudents int     `json:"total_students"`
	PrimaryCount  int     `json:"primary_count"`
	PrepCount     int     `json:"prep_count"`
	PaidTotal     float64 `json:"paid_total"`
}

// Summarize folds the snapshot into the dashboard counters. Only payments
// with status paid contribute to PaidTotal.
func Summarize(snap Snapshot) Summary {
	var sum Summary
	sum.TotalStudents = len(snap.Students)
	for _, s := range snap.Students {
		switch s.Stage {
		case StagePrimary:
			sum.PrimaryCount++
		case StagePrep:
			sum.PrepCount++
		}
	}
	for _, p := range snap.Payments {
		if p.Status == PaymentPaid {
			sum.PaidTotal += p.Amount
		}
	}
	return sum
}

// QueryFilter narrows a student listing; all active criteria are AND-ed.
// Search matches the name case-insensitively or the phone as an exact
// substring.
type QueryFilter struct {
	Search     string `query:"search"`
	Stage      string `query:"stage"`
	GradeLevel string `query:"grade_level"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Stage = core.CleanString(qf.Stage, true /* lower */)
	qf.GradeLevel = core.CleanString(qf.GradeLevel)
}

// FilterStudents returns the subsequence of students satisfying the filter.
func FilterStudents(students []Student, filter QueryFilter) []Student {
	matched := make([]Student, 0, len(students))
	search := strings.ToLower(filter.Search)
	for _, s := range students {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(s.ParentPhone, filter.Search) {
			continue
		}
		if filter.Stage != "" && filter.Stage != "all" && s.Stage != filter.Stage {
			continue
		}
		if filter.GradeLevel != "" && filter.GradeLevel != "all" && s.GradeLevel != filter.GradeLevel {
			continue
		}
		matched = append(matched, s)
	}
	return matched
}

// Profile is the per-student report: the student's own records sorted most
// recent first, plus aggregate totals.
type Profile struct {
	Student      Student      `json:"student"`
	Grades       []Grade      `json:"grades"`
	Attendance   []Attendance `json:"attendance"`
	Payments     []Payment    `json:"payments"`
	Notes        []Note       `json:"notes"`
	Average      null.Float64 `json:"average"`
	ScoreSum     float64      `json:"score_sum"`
	PresentCount int          `json:"present_count"`
	PaymentCount int          `json:"payment_count"`
}

// BuildProfile assembles the report for one student out of a snapshot.
// Grades and attendance sort descending by ISO date (lexicographic is
// chronological on DateLayout); payments sort by their parsed period,
// falling back to label comparison when a label is unparsable.
func BuildProfile(snap Snapshot, studentID string) (Profile, error) {
	var prof Profile
	var found bool
	for _, s := range snap.Students {
		if s.ID == studentID {
			prof.Student = s
			found = true
			break
		}
	}
	if !found {
		return Profile{}, ErrNotFound
	}

	prof.Grades = make([]Grade, 0)
	for _, g := range snap.Grades {
		if g.StudentID == studentID {
			prof.Grades = append(prof.Grades, g)
			prof.ScoreSum += g.Score
		}
	}
	sort.SliceStable(prof.Grades, func(i, j int) bool { return prof.Grades[i].Date > prof.Grades[j].Date })

	prof.Attendance = make([]Attendance, 0)
	for _, a := range snap.Attendance {
		if a.StudentID == studentID {
			prof.Attendance = append(prof.Attendance, a)
			if a.Status == AttendancePresent {
				prof.PresentCount++
			}
		}
	}
	sort.SliceStable(prof.Attendance, func(i, j int) bool { return prof.Attendance[i].Date > prof.Attendance[j].Date })

	prof.Payments = make([]Payment, 0)
	for _, p := range snap.Payments {
		if p.StudentID == studentID {
			prof.Payments = append(prof.Payments, p)
		}
	}
	sortPaymentsByPeriod(prof.Payments)
	prof.PaymentCount = len(prof.Payments)

	prof.Notes = make([]Note, 0)
	for _, n := range snap.Notes {
		if n.StudentID == studentID {
			prof.Notes = append(prof.Notes, n)
		}
	}
	sort.SliceStable(prof.Notes, func(i, j int) bool { return prof.Notes[i].Date > prof.Notes[j].Date })

	prof.Average = AverageScore(studentID, snap.Grades)
	return prof, nil
}

func sortPaymentsByPeriod(payments []Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		yi, mi, oki := ParsePeriodLabel(payments[i].Month)
		yj, mj, okj := ParsePeriodLabel(payments[j].Month)
		if oki && okj {
			if yi != yj {
				return yi > yj
			}
			return mi > mj
		}
		return payments[i].Month > payments[j].Month
	})
}
