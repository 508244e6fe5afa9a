package main

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/core/student"
	inmemdb "github.com/mrdaoud/tadrees/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	conf := &core.Config{Env: "TEST", TutorName: "مستر داود"}
	return &commandLine{
		conf: conf,
		repo: inmemdb.NewStudentRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix": // pass
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	snap, err := cli.repo.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if len(snap.Students) != 5 {
		t.Errorf("students = %d; want 5", len(snap.Students))
	}
	if len(snap.Grades) != 3 {
		t.Errorf("grades = %d; want 3", len(snap.Grades))
	}
	if len(snap.Attendance) != 3 {
		t.Errorf("attendance = %d; want 3", len(snap.Attendance))
	}
	if len(snap.Payments) != 3 {
		t.Errorf("payments = %d; want 3", len(snap.Payments))
	}
	if len(snap.Notes) != 1 {
		t.Errorf("notes = %d; want 1", len(snap.Notes))
	}

	// every dependent row must point at a seeded student
	byID := make(map[string]student.Student, len(snap.Students))
	for _, s := range snap.Students {
		if s.ID == "" {
			t.Error("seeded student without an ID")
		}
		byID[s.ID] = s
	}
	for _, g := range snap.Grades {
		if _, ok := byID[g.StudentID]; !ok {
			t.Errorf("grade %s references unknown student %s", g.ID, g.StudentID)
		}
	}

	// seeding is refused on a non-empty store
	if err := cli.run([]string{"admin", "seed"}); err != errAlreadySeeded {
		t.Errorf("cli.run() error = %v, wantErr %v", err, errAlreadySeeded)
	}
}

func Test_commandLine_setSecret(t *testing.T) {
	cli := setup(t)

	type extra struct {
		secret string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "empty secret", args: []string{"setsecret"}, wantErr: errHelp},
		{name: "ok", args: []string{"setsecret"}, extra: extra{secret: "new-secret-123"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.secret), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
