package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%кино%`, likePattern("Кино"))
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% OFF_now"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestWhereBuilder_ContainsAcrossColumns(t *testing.T) {
	w := &whereBuilder{}
	w.add("v.status = 'active'")
	w.add("v.city_id = ?", uint64(7))
	w.contains("  Зоопарк ", "v.name", "v.metro")

	assert.Equal(t, "v.status = 'active' AND v.city_id = ? AND (LOWER(v.name) LIKE ? OR LOWER(v.metro) LIKE ?)", w.sql())
	assert.Equal(t, []any{uint64(7), "%зоопарк%", "%зоопарк%"}, w.args)
}

func TestWhereBuilder_BlankQueryAddsNothing(t *testing.T) {
	w := &whereBuilder{}
	w.contains("   ", "title")
	assert.Equal(t, "1=1", w.sql())
	assert.Empty(t, w.args)
}

func TestWhereBuilder_PageArgsDoNotAliasWhereArgs(t *testing.T) {
	w := &whereBuilder{}
	w.add("x = ?", 1)

	page := w.pageArgs(10, 20)
	assert.Equal(t, []any{1, 10, 20}, page)
	assert.Equal(t, []any{1}, w.args)

	assert.Equal(t, []any{1, 20, 0}, w.pageArgs(0, -5))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
