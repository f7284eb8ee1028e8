package controllers

import (
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Paginated is the envelope of every paged list
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// readPage parses page and limit; malformed values fall back to defaults
func readPage(c *gin.Context, defaultSize int) services.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))
	return services.NewPage(number, size, defaultSize)
}

// newPaginated builds the envelope with absolute next/previous links that
// keep the other query parameters of the request
func newPaginated[T any](c *gin.Context, page services.Page, total int64, results []T) Paginated[T] {
	out := Paginated[T]{Count: total, Results: results}
	if out.Results == nil {
		out.Results = make([]T, 0)
	}
	if page.HasNext(total) {
		out.Next = pageLink(c, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageLink(c, page.Number-1)
	}
	return out
}

func pageLink(c *gin.Context, number int) *string {
	u := *c.Request.URL
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u.Scheme = scheme
	u.Host = c.Request.Host

	link := u.String()
	return &link
}
