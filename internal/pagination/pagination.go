package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Request is a 1-based page request.
type Request struct {
	Page    int
	PerPage int
}

// Normalize clamps the request to sane bounds.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = 1
	}

	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}

	if r.PerPage > MaxPerPage {
		r.PerPage = MaxPerPage
	}

	return r
}

func (r Request) Offset() int { return (r.Page - 1) * r.PerPage }
func (r Request) Limit() int  { return r.PerPage }

// FromQuery reads page and per_page, ignoring malformed values.
func FromQuery(q url.Values) Request {
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	return Request{Page: page, PerPage: perPage}.Normalize()
}

type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewMeta(r Request, total int) Meta {
	pages := 0
	if r.PerPage > 0 {
		pages = (total + r.PerPage - 1) / r.PerPage
	}

	return Meta{Page: r.Page, PerPage: r.PerPage, Total: total, TotalPages: pages}
}
