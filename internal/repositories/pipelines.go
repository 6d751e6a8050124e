package repositories

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

// Report names double as route names.
const (
	ReportStatus        = "grafico1"
	ReportModality      = "grafico2"
	ReportOrgan         = "grafico3"
	ReportYear          = "grafico4"
	ReportTopItems      = "top-itens-licitados"
	ReportTotalValue    = "valor-total-licitado"
	ReportSupplierTypes = "tipo-fornecedores"
	ReportTopCompanies  = "top-empresas"
	ReportParticipants  = "empresas-participantes"
	ReportStates        = "estados"
)

const (
	topItemsLimit     = 10
	topCompaniesLimit = 5
)

// FilterDocument translates filter clauses into a query document.
// Regex clauses match the literal input anywhere in the value, ignoring case.
func FilterDocument(f domain.BiddingFilter) bson.D {
	doc := bson.D{}
	for _, c := range f {
		switch c.Op {
		case domain.OpRegex:
			doc = append(doc, bson.E{Key: c.Field, Value: primitive.Regex{
				Pattern: regexp.QuoteMeta(fmt.Sprint(c.Value)),
				Options: "i",
			}})
		default:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		}
	}
	return doc
}

// MatchStage wraps the filter in a $match stage.
func MatchStage(f domain.BiddingFilter) bson.D {
	return bson.D{{Key: "$match", Value: FilterDocument(f)}}
}

func notNull(path string) bson.D {
	return bson.D{{Key: "$match", Value: bson.D{{Key: path, Value: bson.D{{Key: "$ne", Value: nil}}}}}}
}

func countBy(path string) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + path},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}
}

func sortBy(keys ...bson.E) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D(keys)}}
}

func limit(n int) bson.D {
	return bson.D{{Key: "$limit", Value: n}}
}

var (
	byCountDesc = []bson.E{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}
	byIDAsc     = []bson.E{{Key: "_id", Value: 1}}
)

// ReportParams is everything a pipeline builder may depend on.
type ReportParams struct {
	Source  DataSource
	Filter  domain.BiddingFilter
	Options domain.ReportOptions
}

// ReportDef is one entry of the report catalog.
type ReportDef struct {
	Name string
	// Filtered is false for reports that ignore the request filter.
	Filtered bool
	Build    func(p ReportParams) mongo.Pipeline
}

var reportDefs = map[string]ReportDef{
	ReportStatus: {Name: ReportStatus, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		return mongo.Pipeline{MatchStage(p.Filter), countBy(pathStatus), notNull("_id"), sortBy(byCountDesc...)}
	}},
	ReportModality: {Name: ReportModality, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		return mongo.Pipeline{MatchStage(p.Filter), countBy(pathModality), notNull("_id"), sortBy(byCountDesc...)}
	}},
	ReportOrgan: {Name: ReportOrgan, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		return mongo.Pipeline{MatchStage(p.Filter), notNull(pathOrgan), countBy(pathOrgan), sortBy(byCountDesc...)}
	}},
	ReportYear: {Name: ReportYear, Filtered: true, Build: buildYearBreakdown},
	ReportTopItems: {Name: ReportTopItems, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		pipe := mongo.Pipeline{MatchStage(p.Filter)}
		pipe = append(pipe, p.Source.ItemStages()...)
		return append(pipe,
			notNull(pathItemDesc),
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$" + pathItemDesc},
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + pathItemQty}}},
			}}},
			sortBy(bson.E{Key: "total", Value: -1}, bson.E{Key: "_id", Value: 1}),
			limit(topItemsLimit),
		)
	}},
	ReportTotalValue: {Name: ReportTotalValue, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		pipe := mongo.Pipeline{MatchStage(p.Filter)}
		pipe = append(pipe, p.Source.ItemStages()...)
		return append(pipe,
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + pathItemValue}}},
			}}},
			bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "total", Value: 1}}}},
		)
	}},
	ReportSupplierTypes: {Name: ReportSupplierTypes, Filtered: false, Build: func(p ReportParams) mongo.Pipeline {
		pipe := p.Source.ResultStages()
		return append(pipe, countBy(pathSupplierType), notNull("_id"), sortBy(byCountDesc...))
	}},
	ReportTopCompanies: {Name: ReportTopCompanies, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		pipe := mongo.Pipeline{MatchStage(p.Filter)}
		pipe = append(pipe, p.Source.ResultStages()...)
		return append(pipe,
			bson.D{{Key: "$match", Value: bson.D{{Key: pathSupplierName, Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}}},
			countBy(pathSupplierName),
			sortBy(byCountDesc...),
			limit(topCompaniesLimit),
			bson.D{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "nomeEmpresa", Value: "$_id"},
				{Key: "totalLicitacoes", Value: "$count"},
			}}},
		)
	}},
	ReportParticipants: {Name: ReportParticipants, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		pipe := mongo.Pipeline{MatchStage(p.Filter), yearIn(p.Options.Years)}
		pipe = append(pipe, p.Source.ResultStages()...)
		return append(pipe,
			notNull(p.Source.SupplierIDPath),
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: bson.D{
					{Key: "ano", Value: "$" + pathYear},
					{Key: "fornecedor", Value: "$" + p.Source.SupplierIDPath},
				}},
				{Key: "nome", Value: bson.D{{Key: "$first", Value: "$" + pathSupplierName}}},
			}}},
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$_id.ano"},
				{Key: "totalFornecedores", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			sortBy(byIDAsc...),
		)
	}},
	ReportStates: {Name: ReportStates, Filtered: true, Build: func(p ReportParams) mongo.Pipeline {
		return mongo.Pipeline{
			MatchStage(p.Filter),
			notNull(pathState),
			bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + pathState}}}},
			sortBy(byIDAsc...),
		}
	}},
}

func yearIn(years []int) bson.D {
	in := bson.A{}
	for _, y := range years {
		in = append(in, y)
	}
	return bson.D{{Key: "$match", Value: bson.D{{Key: pathYear, Value: bson.D{{Key: "$in", Value: in}}}}}}
}

func buildYearBreakdown(p ReportParams) mongo.Pipeline {
	pipe := mongo.Pipeline{MatchStage(p.Filter), notNull(pathYear)}
	policy := p.Options.YearBreakdown
	if policy.RestrictYears {
		pipe = append(pipe, yearIn(p.Options.Years))
	}
	pipe = append(pipe, countBy(pathYear))
	if policy.RestrictYears && policy.MinCount > 0 {
		pipe = append(pipe, bson.D{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gte", Value: policy.MinCount}}}}}})
	}
	return append(pipe, sortBy(byIDAsc...))
}

// LookupReport returns the catalog entry for name.
func LookupReport(name string) (ReportDef, bool) {
	def, ok := reportDefs[name]
	return def, ok
}

// BuildPipeline returns the aggregation for a named report.
func BuildPipeline(name string, p ReportParams) (mongo.Pipeline, error) {
	def, ok := LookupReport(name)
	if !ok {
		return nil, fmt.Errorf("unknown report %q", name)
	}
	if !def.Filtered {
		p.Filter = nil
	}
	return def.Build(p), nil
}

// ListPipeline pages through the matching biddings of a source.
func ListPipeline(src DataSource, f domain.BiddingFilter, page domain.PageParams) mongo.Pipeline {
	pipe := mongo.Pipeline{
		MatchStage(f),
		sortBy(byIDAsc...),
		bson.D{{Key: "$skip", Value: int64(page.Skip)}},
		limit(page.Limit),
	}
	return append(pipe, src.ListJoins()...)
}
