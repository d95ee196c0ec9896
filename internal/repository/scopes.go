package repository

import (
	"strings"

	"github.com/stemsi/course-registry/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup or mutation matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// scope is a reusable query fragment applied with gorm's Scopes.
type scope = func(*gorm.DB) *gorm.DB

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsFold matches rows whose column contains value, ignoring case.
// Column names come from code, never from the request.
func containsFold(column, value string) scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" ILIKE ?", "%"+likeEscaper.Replace(value)+"%")
	}
}

// equals matches rows whose column equals value unless value is the zero value.
func equals[T comparable](column string, value T) scope {
	return func(db *gorm.DB) *gorm.DB {
		var zero T
		if value == zero {
			return db
		}
		return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
}

// compare matches rows where column op value holds. A nil value is ignored.
func compare(column, op string, value *int) scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == nil {
			return db
		}
		return db.Where(column+" "+op+" ?", *value)
	}
}

// sortAndPage applies ordering and the offset/limit window. Ties are broken
// by id so pages stay stable.
func sortAndPage(sortFields map[string]string, params model.ListParams) scope {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortFields[params.SortBy]
		if !ok {
			column = sortFields[model.DefaultSortField]
		}
		desc := params.Order != model.SortAsc

		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
		if column != "id" {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
		}
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}
