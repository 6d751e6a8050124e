package repositories

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

// Collection names.
const (
	CollBiddings = "licitacao"
	CollItems    = "item_licitacao"
	CollSupplier = "fornecedor"
	CollUnified  = "licitacoes_unificadas"
)

// Paths every source exposes once its item/result stages ran.
const (
	pathStatus       = "situacaoLicitacao"
	pathModality     = "modalidadeCompra.descricao"
	pathOrgan        = "unidadeOrgao.descricao"
	pathYear         = "anoCompra"
	pathState        = "unidadeOrgao.cidade.uf.nome"
	pathItems        = "itens"
	pathItemDesc     = "itens.descricao"
	pathItemQty      = "itens.quantidade"
	pathItemValue    = "itens.valorTotal"
	pathResult       = "itens.resultado"
	pathSupplier     = "itens.resultado.fornecedor"
	pathSupplierName = "itens.resultado.fornecedor.nomeRazaoSocial"
	pathSupplierType = "itens.resultado.fornecedor.tipoPessoa"
)

// DataSource describes one bidding collection layout. Both layouts end up with
// items under "itens" and the awarded supplier under "itens.resultado.fornecedor".
type DataSource struct {
	Name       domain.Source
	Collection string
	// SupplierIDPath identifies a supplier after ResultStages.
	SupplierIDPath string
	// ItemStages yields one document per line item.
	ItemStages func() mongo.Pipeline
	// ResultStages yields one document per award result with its supplier.
	ResultStages func() mongo.Pipeline
	// ListJoins attaches items and suppliers to a page of biddings.
	ListJoins func() mongo.Pipeline
}

func lookupItems() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: CollItems},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "licitacao"},
		{Key: "as", Value: pathItems},
	}}}
}

func unwind(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: "$" + path}}
}

// NormalizedSource reads licitacao and joins item_licitacao and fornecedor.
func NormalizedSource() DataSource {
	items := func() mongo.Pipeline {
		return mongo.Pipeline{lookupItems(), unwind(pathItems)}
	}
	return DataSource{
		Name:           domain.SourceNormalized,
		Collection:     CollBiddings,
		SupplierIDPath: pathSupplier + "._id",
		ItemStages:     items,
		ResultStages: func() mongo.Pipeline {
			p := items()
			return append(p,
				unwind(pathResult),
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: CollSupplier},
					{Key: "localField", Value: pathResult + ".fornecedor_id"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: pathSupplier},
				}}},
				unwind(pathSupplier),
			)
		},
		ListJoins: func() mongo.Pipeline {
			return mongo.Pipeline{
				lookupItems(),
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: CollSupplier},
					{Key: "localField", Value: pathResult + ".fornecedor_id"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "fornecedores"},
				}}},
			}
		},
	}
}

// UnifiedSource reads licitacoes_unificadas, where items, results and
// suppliers are embedded.
func UnifiedSource() DataSource {
	return DataSource{
		Name:           domain.SourceUnified,
		Collection:     CollUnified,
		SupplierIDPath: pathSupplier + ".niFornecedor",
		ItemStages: func() mongo.Pipeline {
			return mongo.Pipeline{unwind(pathItems)}
		},
		ResultStages: func() mongo.Pipeline {
			return mongo.Pipeline{unwind(pathItems), unwind(pathResult)}
		},
		ListJoins: func() mongo.Pipeline { return nil },
	}
}

// SourceFor returns the layout for name, defaulting to the unified collection.
func SourceFor(name domain.Source) DataSource {
	if name == domain.SourceNormalized {
		return NormalizedSource()
	}
	return UnifiedSource()
}
