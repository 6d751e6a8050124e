package services

import (
	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/utils"
)

// Document paths the query dimensions constrain.
const (
	FieldModalityID   = "modalidadeCompra.id"
	FieldYear         = "anoCompra"
	FieldState        = "unidadeOrgao.cidade.uf.nome"
	FieldMunicipality = "unidadeOrgao.cidade.nome"
	FieldUnitCode     = "unidadeOrgao.codigo"
	FieldOrganCode    = "unidadeOrgao.orgao.codigo"
)

type clauseKind int

const (
	kindInt clauseKind = iota
	kindText
	kindExact
)

type dimension struct {
	field string
	kind  clauseKind
	value func(domain.BiddingQuery) string
}

// Clause order is fixed so identical queries always build identical filters.
var dimensions = []dimension{
	{FieldModalityID, kindInt, func(q domain.BiddingQuery) string { return q.Modality }},
	{FieldYear, kindInt, func(q domain.BiddingQuery) string { return q.Year }},
	{FieldState, kindText, func(q domain.BiddingQuery) string { return q.State }},
	{FieldMunicipality, kindText, func(q domain.BiddingQuery) string { return q.Municipality }},
	{FieldUnitCode, kindExact, func(q domain.BiddingQuery) string { return q.Unit }},
	{FieldOrganCode, kindExact, func(q domain.BiddingQuery) string { return q.Organ }},
}

// BuildBiddingFilter maps the optional query dimensions to filter clauses.
// Non-numeric modality or year values are dropped instead of constraining
// the result to nothing.
func BuildBiddingFilter(q domain.BiddingQuery) domain.BiddingFilter {
	filter := domain.BiddingFilter{}
	for _, d := range dimensions {
		raw := utils.TrimOrEmpty(d.value(q))
		if raw == "" {
			continue
		}
		switch d.kind {
		case kindInt:
			n, ok := utils.ParseInt(raw)
			if !ok {
				continue
			}
			filter = append(filter, domain.Filter{Field: d.field, Op: domain.OpEq, Value: n})
		case kindText:
			filter = append(filter, domain.Filter{Field: d.field, Op: domain.OpRegex, Value: raw})
		case kindExact:
			filter = append(filter, domain.Filter{Field: d.field, Op: domain.OpEq, Value: raw})
		}
	}
	return filter
}
