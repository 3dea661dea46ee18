package repositories

import (
	"errors"
	"strings"

	gormlib "gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/constants"
)

// ErrPageOutOfRange is returned for a page past the last one. Page 1 of an
// empty result is not out of range.
var ErrPageOutOfRange = errors.New("page out of range")

// NormalizePage applies the default page size, clamps it to the maximum
// and treats anything below page 1 as page 1.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}

// paginate counts the rows matched by build() and loads the requested page.
// build must return a fresh chain on every call; list is applied to the
// second chain only, for selects and ordering the count must not see.
func paginate[T any](build func() *gormlib.DB, list func(*gormlib.DB) *gormlib.DB, page, pageSize int) ([]T, int64, error) {
	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 1 && int64(page-1)*int64(pageSize) >= total {
		return nil, total, ErrPageOutOfRange
	}

	results := make([]T, 0)
	err := list(build()).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// Ordering maps public ordering names to SQL columns.
type Ordering map[string]string

// Clause turns an ordering parameter such as "-name" into an ORDER BY
// clause. Unknown names fall back to fallback; a primary key tiebreak keeps
// pages stable.
func (o Ordering) Clause(param, fallback, pk string) string {
	name := strings.TrimSpace(param)
	desc := strings.HasPrefix(name, "-")
	name = strings.TrimPrefix(name, "-")

	column, ok := o[name]
	if !ok {
		column, desc = o[fallback], false
	}

	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return column + dir + ", " + pk + " ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains, likePrefix build lower-cased LIKE patterns for use with
// likeExpr.
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func likePrefix(s string) string {
	return likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// likeExpr is a case-insensitive LIKE on column that works on both
// PostgreSQL and SQLite.
func likeExpr(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// anyLike ORs a case-insensitive contains match of term over columns.
func anyLike(term string, columns ...string) (string, []any) {
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	pattern := likeContains(term)
	for i, c := range columns {
		parts[i] = likeExpr(c)
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
