package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionStringCarriesSSLMode(t *testing.T) {
	dsn := connectionString("db.internal", "5432", "app", "secret", "autoapply", "require")
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestConnectionStringDefaultsSSLModeToDisable(t *testing.T) {
	dsn := connectionString("localhost", "5432", "app", "secret", "autoapply", "")
	assert.Contains(t, dsn, "sslmode=disable")
}
