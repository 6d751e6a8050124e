package models

// GroupCount is one row of a breakdown report.
type GroupCount struct {
	ID    any   `bson:"_id" json:"_id"`
	Count int64 `bson:"count" json:"count"`
}

// ModalityShare is a modality with its share of all matching biddings, in percent.
type ModalityShare struct {
	Modality   any     `json:"modalidade"`
	Percentage float64 `json:"porcentagem"`
}

// ItemTotal is the summed quantity of one item description.
type ItemTotal struct {
	ID    any     `bson:"_id" json:"_id"`
	Total float64 `bson:"total" json:"total"`
}

// ValueTotal is the summed value of all matching items.
type ValueTotal struct {
	Total float64 `bson:"total" json:"total"`
}

// CompanyCount counts awarded results per supplier name.
type CompanyCount struct {
	Name  string `bson:"nomeEmpresa" json:"nomeEmpresa"`
	Count int64  `bson:"totalLicitacoes" json:"totalLicitacoes"`
}

// YearSuppliers counts distinct suppliers with awarded results in a year.
type YearSuppliers struct {
	Year      int   `bson:"_id" json:"ano"`
	Suppliers int64 `bson:"totalFornecedores" json:"totalFornecedores"`
}

// StateName is one distinct state.
type StateName struct {
	ID any `bson:"_id" json:"_id"`
}

// TotalCount is the number of biddings matching a filter.
type TotalCount struct {
	Total int64 `json:"totalLicitacoes"`
}
