package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementsAreIdempotentCreates(t *testing.T) {
	stmts := Statements()
	assert.Len(t, stmts, 9)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS "), s[:40])
	}
}

func TestSchemaCoversSearchTables(t *testing.T) {
	joined := strings.Join(Statements(), "\n")
	for _, table := range []string{"cities", "listings", "afisha_events", "afisha_ticket_types", "venue_partners", "content", "collections", "products"} {
		assert.Contains(t, joined, "EXISTS "+table+" (", table)
	}
}
