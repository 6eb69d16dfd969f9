package store

import (
	"fmt"
	"strings"

	"github.com/neighborhood-app/backend/internal/apperr"
)

// Field is one column assignment in a partial update, named by its logical
// (API-side) key.
type Field struct {
	Name  string
	Value any
}

// BuildPartialUpdate turns an ordered field list into a SET fragment plus the
// positional args that go with it. Logical names present in colNames are
// rewritten to their storage column; everything else is used verbatim, so
// callers only list the fields whose casing differs (firstName vs
// first_name). Placeholders are 1-based and contiguous, matching the
// position of each value in the returned slice.
//
// An empty field list is a caller error, not a no-op.
func BuildPartialUpdate(fields []Field, colNames map[string]string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", apperr.ErrBadRequest)
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, f := range fields {
		col := f.Name
		if mapped, ok := colNames[f.Name]; ok {
			col = mapped
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, f.Value)
	}

	return strings.Join(setClauses, ", "), args, nil
}
