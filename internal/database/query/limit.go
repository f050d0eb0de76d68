// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"fmt"
	"math"
)

// Limit is a LIMIT offset,count clause. The zero value emits nothing.
type Limit struct {
	set    bool
	offset int64
	count  int64
}

// Page selects page (1-based) of size limit. The offset is (page-1)*limit,
// capped at math.MaxInt64.
func Page(page, limit int64) Limit {
	count := floorCount(limit)
	if page <= 1 {
		return newLimit(0, count)
	}
	if page-1 > math.MaxInt64/count {
		return newLimit(math.MaxInt64, count)
	}
	return newLimit((page-1)*count, count)
}

// From selects limit rows starting at offset from.
func From(from, limit int64) Limit {
	return newLimit(from, limit)
}

// First selects the first limit rows.
func First(limit int64) Limit {
	return newLimit(0, limit)
}

// newLimit floors a negative offset to 0 and a count below 1 to 1.
func newLimit(offset, count int64) Limit {
	if offset < 0 {
		offset = 0
	}
	return Limit{set: true, offset: offset, count: floorCount(count)}
}

func floorCount(count int64) int64 {
	if count < 1 {
		return 1
	}
	return count
}

// IsZero reports whether the limit is unset.
func (l Limit) IsZero() bool { return !l.set }

// Offset returns the floored offset.
func (l Limit) Offset() int64 { return l.offset }

// Size returns the floored row count.
func (l Limit) Size() int64 { return l.count }

// Build renders " LIMIT offset,count" or "" when unset.
func (l Limit) Build() string {
	if !l.set {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d,%d", l.offset, l.count)
}

// Pagination describes one page of a result set of Total rows.
type Pagination struct {
	Page    int64 `json:"page"`
	PerPage int64 `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

// Paginate clamps page into [1, Pages] and computes the page count.
// An empty result set still has one page.
func Paginate(total, page, perPage int64) Pagination {
	perPage = floorCount(perPage)
	if total < 0 {
		total = 0
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, Pages: pages}
}

// Limit returns the clause selecting this page.
func (p Pagination) Limit() Limit {
	return Page(p.Page, p.PerPage)
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.Page < p.Pages }

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }
