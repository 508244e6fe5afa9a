package main

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/core/student"
	"github.com/mrdaoud/tadrees/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.RunGoose // mockable

	errHelp          = errors.New("help provided")
	errAlreadySeeded = errors.New("store already holds students; refusing to seed")
)

type commandLine struct {
	conf *core.Config
	db   *sqlx.DB
	repo student.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, down, status, ...)")
	fmt.Println("  seed - load the starter classroom records into an empty store")
	fmt.Println("  setsecret - hash a new teacher secret; the value is prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return gooseRunFunc(cli.db, args[2], args[3:]...)
	case "seed":
		return cli.seed()
	case "setsecret":
		fmt.Print("Enter new teacher secret:")
		secret, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(secret) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.setSecret(string(secret))
	default:
		cli.printUsage()
		return errHelp
	}
}

// seed loads the starter classroom: five students with a few grades,
// attendance marks, subscriptions and one note. Only an empty store may be
// seeded.
func (cli *commandLine) seed() error {
	existing, err := cli.repo.QueryAllStudents()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errAlreadySeeded
	}

	students := []student.Student{
		{Name: "أحمد محمد علي", ParentPhone: "01012345678", Stage: student.StagePrimary, GradeLevel: "الصف الرابع الابتدائي", EnrollmentDate: "2023-09-01"},
		{Name: "سارة محمود حسن", ParentPhone: "01122334455", Stage: student.StagePrimary, GradeLevel: "الصف الخامس الابتدائي", EnrollmentDate: "2023-09-02"},
		{Name: "ياسين كمال", ParentPhone: "01299887766", Stage: student.StagePrep, GradeLevel: "الصف الأول الإعدادي", EnrollmentDate: "2023-09-05"},
		{Name: "ليلى إبراهيم", ParentPhone: "01055667788", Stage: student.StagePrep, GradeLevel: "الصف الثاني الإعدادي", EnrollmentDate: "2023-09-10"},
		{Name: "يوسف هاني", ParentPhone: "01200001111", Stage: student.StagePrimary, GradeLevel: "الصف السادس الابتدائي", EnrollmentDate: "2023-09-12"},
	}
	ids := make([]string, len(students))
	for i, s := range students {
		s.ID = uuid.New().String()
		if _, err = cli.repo.CreateStudent(s); err != nil {
			return err
		}
		ids[i] = s.ID
	}

	grades := []student.Grade{
		{StudentID: ids[0], Subject: "رياضيات", Score: 18, Total: 20, Date: "2023-10-15", Kind: student.GradeQuiz},
		{StudentID: ids[1], Subject: "رياضيات", Score: 15, Total: 20, Date: "2023-10-15", Kind: student.GradeQuiz},
		{StudentID: ids[2], Subject: "رياضيات", Score: 19, Total: 20, Date: "2023-11-05", Kind: student.GradeQuiz},
	}
	for _, g := range grades {
		g.ID = uuid.New().String()
		if _, err = cli.repo.CreateGrade(g); err != nil {
			return err
		}
	}

	attendance := []student.Attendance{
		{StudentID: ids[0], Date: "2023-10-20", Status: student.AttendancePresent},
		{StudentID: ids[1], Date: "2023-10-20", Status: student.AttendanceAbsent},
		{StudentID: ids[2], Date: "2023-10-20", Status: student.AttendancePresent},
	}
	for _, a := range attendance {
		a.ID = uuid.New().String()
		if _, err = cli.repo.UpsertAttendance(a); err != nil {
			return err
		}
	}

	payments := []student.Payment{
		{StudentID: ids[0], Month: "أكتوبر 2023", Status: student.PaymentPaid, Amount: 200, PaidAt: null.StringFrom("2023-10-01"), DueDate: "2023-10-05", Method: "نقدي"},
		{StudentID: ids[1], Month: "أكتوبر 2023", Status: student.PaymentUnpaid, Amount: 200, DueDate: "2023-10-05"},
		{StudentID: ids[2], Month: "أكتوبر 2023", Status: student.PaymentPaid, Amount: 250, PaidAt: null.StringFrom("2023-10-02"), DueDate: "2023-10-05", Method: "فودافون كاش"},
	}
	for _, p := range payments {
		p.ID = uuid.New().String()
		if _, err = cli.repo.CreatePayment(p); err != nil {
			return err
		}
	}

	note := student.Note{
		ID:        uuid.New().String(),
		StudentID: ids[0],
		Date:      "2023-10-21",
		Content:   "متفوق في الحفظ، يحتاج تثبيت المراجعة",
		Author:    cli.conf.TutorName,
	}
	if _, err = cli.repo.CreateNote(note); err != nil {
		return err
	}

	fmt.Printf("seeded %d students\n", len(students))
	return nil
}

func (cli *commandLine) setSecret(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Printf("Set %s_TEACHERSECRETHASH to:\n%s\n", cli.conf.Env, hash)
	return nil
}
