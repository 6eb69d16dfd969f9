package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neighborhood-app/backend/internal/apperr"
)

func TestBuildPartialUpdate_MapsColumnNames(t *testing.T) {
	fields := []Field{
		{Name: "firstName", Value: "Aliya"},
		{Name: "age", Value: 32},
	}

	setClause, args, err := BuildPartialUpdate(fields, map[string]string{
		"firstName": "first_name",
	})
	require.NoError(t, err)
	assert.Equal(t, "first_name = $1, age = $2", setClause)
	assert.Equal(t, []any{"Aliya", 32}, args)
}

func TestBuildPartialUpdate_NoMapping(t *testing.T) {
	setClause, args, err := BuildPartialUpdate(
		[]Field{{Name: "email", Value: "a@b.com"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "email = $1", setClause)
	assert.Equal(t, []any{"a@b.com"}, args)
}

func TestBuildPartialUpdate_PreservesFieldOrder(t *testing.T) {
	fields := []Field{
		{Name: "firstName", Value: "A"},
		{Name: "lastName", Value: "B"},
		{Name: "password", Value: "hash"},
		{Name: "email", Value: "a@b.com"},
	}

	setClause, args, err := BuildPartialUpdate(fields, map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"first_name = $1, last_name = $2, password = $3, email = $4",
		setClause)
	assert.Equal(t, []any{"A", "B", "hash", "a@b.com"}, args)
}

func TestBuildPartialUpdate_EmptyIsBadRequest(t *testing.T) {
	_, _, err := BuildPartialUpdate(nil, map[string]string{"firstName": "first_name"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}
