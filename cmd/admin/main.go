package main

import (
	"log"
	"os"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/storage/database"
	sqlxrepos "github.com/mrdaoud/tadrees/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	if err := database.CreateIfNotExist(conf); err != nil {
		log.Fatalf("admin: creating database: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		log.Fatalf("admin: opening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	cli := &commandLine{
		conf: conf,
		db:   db,
		repo: sqlxrepos.NewStudentRepository(db),
	}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		log.Fatalf("admin: %v", err)
	}
}
