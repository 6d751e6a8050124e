package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

// bindBiddingQuery reads the optional filter and paging parameters. It never fails:
// malformed values are interpreted later by the filter builder and page resolver.
func bindBiddingQuery(c *gin.Context) domain.BiddingQuery {
	return domain.BiddingQuery{
		Modality:     c.Query("modalidade"),
		Unit:         c.Query("unidade"),
		Organ:        c.Query("orgao"),
		Municipality: c.Query("municipio"),
		State:        c.Query("estado"),
		Year:         c.Query("ano"),
		Page:         c.Query("page"),
		Limit:        c.Query("limit"),
	}
}
