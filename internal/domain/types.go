package domain

// Source names one of the two bidding collection layouts.
type Source string

const (
	// SourceNormalized joins licitacao, item_licitacao and fornecedor at query time.
	SourceNormalized Source = "normalized"
	// SourceUnified reads the denormalized licitacoes_unificadas collection.
	SourceUnified Source = "unified"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceNormalized || s == SourceUnified
}

// BiddingQuery is the raw query string of a report request. Every field is optional.
type BiddingQuery struct {
	Modality     string `form:"modalidade"`
	Unit         string `form:"unidade"`
	Organ        string `form:"orgao"`
	Municipality string `form:"municipio"`
	State        string `form:"estado"`
	Year         string `form:"ano"`
	Page         string `form:"page"`
	Limit        string `form:"limit"`
}

// FilterOp is the constraint kind applied to one field.
type FilterOp string

const (
	OpEq    FilterOp = "eq"    // exact equality
	OpRegex FilterOp = "regex" // case-insensitive substring
)

// Filter expresses a simple filter clause.
type Filter struct {
	Field string   `json:"field"`
	Op    FilterOp `json:"op"`
	Value any      `json:"value"`
}

// BiddingFilter is a conjunction of clauses. The zero value matches everything.
type BiddingFilter []Filter

// Get returns the clause for field, if any.
func (f BiddingFilter) Get(field string) (Filter, bool) {
	for _, c := range f {
		if c.Field == field {
			return c, true
		}
	}
	return Filter{}, false
}

// PageParams carries the resolved paging window.
type PageParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// YearBreakdownPolicy controls the year breakdown report.
type YearBreakdownPolicy struct {
	RestrictYears bool
	MinCount      int
}

// ReportOptions are the deployment-level knobs shared by pipelines and services.
type ReportOptions struct {
	// Years is the fixed, ordered year set used by the participating-companies
	// report and by the restricted year breakdown.
	Years         []int
	YearBreakdown YearBreakdownPolicy
}
