package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePage reads ?page and ?limit. Missing or malformed values fall back to
// the defaults; limit is capped at MaxPageLimit.
func ParsePage(c *gin.Context) Page {
	p := Page{Page: 1, Limit: DefaultPageLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v >= 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v >= 1 {
		p.Limit = v
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope limits a query to the page.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

type PageResult[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Paginate counts q, then loads the requested page of it into a slice of T.
// load scopes (preloads, ordering) apply to the page query only.
func Paginate[T any](q *gorm.DB, p Page, load ...func(*gorm.DB) *gorm.DB) (PageResult[T], error) {
	res := PageResult[T]{Data: []T{}, Page: p.Page, Limit: p.Limit}

	q = q.Session(&gorm.Session{})
	if err := q.Count(&res.Total).Error; err != nil {
		return res, err
	}
	if err := q.Scopes(load...).Scopes(p.Scope).Find(&res.Data).Error; err != nil {
		return res, err
	}
	return res, nil
}

func Preload(associations ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, a := range associations {
			db = db.Preload(a)
		}
		return db
	}
}

func OrderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}
