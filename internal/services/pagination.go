package services

import (
	"math"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/utils"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ResolvePage parses page and limit, falling back to the defaults for anything
// that is not a positive integer. Pages past the end are not clamped.
func ResolvePage(page, limit string) domain.PageParams {
	p, ok := utils.ParseInt(page)
	if !ok || p < 1 {
		p = DefaultPage
	}
	l, ok := utils.ParseInt(limit)
	if !ok || l < 1 {
		l = DefaultLimit
	}
	// A window past the int range still lies past the end of any collection.
	if p-1 > math.MaxInt/l {
		return domain.PageParams{Page: p, Limit: l, Skip: math.MaxInt}
	}
	return domain.PageParams{Page: p, Limit: l, Skip: (p - 1) * l}
}
