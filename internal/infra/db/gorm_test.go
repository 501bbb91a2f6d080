package db_test

import (
	"testing"

	"shopapi/internal/config"
	"shopapi/internal/infra/db"

	"github.com/stretchr/testify/assert"
)

func TestDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://u:p@db:5432/shop",
		DBHost:      "ignored",
	}

	assert.Equal(t, "postgres://u:p@db:5432/shop", db.DSN(cfg))
}

func TestDSN_BuildsFromParts(t *testing.T) {
	cfg := config.Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "postgres",
		DBName:     "shop",
		DBSSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=shop sslmode=disable",
		db.DSN(cfg),
	)
}
