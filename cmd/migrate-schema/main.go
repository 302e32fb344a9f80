// migrate-schema is a command line tool to create or update the reference
// database schema. Connection details are read from the PG_* environment
// variables, optionally seeded from a .env file.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/load"
)

func main() {

	env_file := flag.String("env-file", "", "An optional .env file to load PG_* connection variables from.")

	flag.Parse()

	if *env_file != "" {

		err := godotenv.Load(*env_file)

		if err != nil {
			log.Fatalf("Failed to load env file '%s', %v", *env_file, err)
		}
	}

	logger := georef.SetupLogger()

	ctx := context.Background()

	db, err := load.OpenDatabase()

	if err != nil {
		log.Fatalf("Failed to open database, %v", err)
	}

	defer db.Close()

	m := load.NewManager(db)

	err = m.MigrateSchema(ctx)

	if err != nil {
		log.Fatalf("Failed to migrate schema, %v", err)
	}

	logger.Info("Schema migrated")
}
