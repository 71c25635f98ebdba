package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 20
	maxPageSize       = 100
)

// QueryParams holds common list-endpoint query parameters.
type QueryParams struct {
	PageNumber int
	PageSize   int
}

// NewQueryParams parses page/page_size from the request, clamping to sane bounds.
func NewQueryParams(c echo.Context) QueryParams {
	p := QueryParams{
		PageNumber: defaultPageNumber,
		PageSize:   defaultPageSize,
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		p.PageSize = v
		if p.PageSize > maxPageSize {
			p.PageSize = maxPageSize
		}
	}
	return p
}
