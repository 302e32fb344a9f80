package load

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// OpenDatabase opens a Postgres connection from the PG_* environment
// variables. Connection lifecycle is owned by the caller.
func OpenDatabase() (*sql.DB, error) {

	db, err := sql.Open("postgres", DSNFromEnvironment())

	if err != nil {
		return nil, fmt.Errorf("Failed to open database, %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)

	return db, nil
}

func DSNFromEnvironment() string {

	host := getenv("PG_HOST", "localhost")
	port := getenv("PG_PORT", "5432")
	user := getenv("PG_USER", "georef")
	password := os.Getenv("PG_PASSWORD")
	name := getenv("PG_DATABASE", "georef")
	sslmode := getenv("PG_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s", host, port, user, name, sslmode)

	if password != "" {
		dsn = fmt.Sprintf("%s password=%s", dsn, password)
	}

	return dsn
}

func getenv(key string, fallback string) string {

	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	return v
}
