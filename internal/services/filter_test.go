package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

func TestBuildBiddingFilter_EmptyQueryMatchesEverything(t *testing.T) {
	f := BuildBiddingFilter(domain.BiddingQuery{})
	assert.Empty(t, f)

	f = BuildBiddingFilter(domain.BiddingQuery{Modality: "  ", State: "", Page: "2", Limit: "5"})
	assert.Empty(t, f, "blank and paging fields must not produce clauses")
}

func TestBuildBiddingFilter_NumericFields(t *testing.T) {
	f := BuildBiddingFilter(domain.BiddingQuery{Modality: "6", Year: " 2023 "})

	mod, ok := f.Get(FieldModalityID)
	require.True(t, ok)
	assert.Equal(t, domain.OpEq, mod.Op)
	assert.Equal(t, 6, mod.Value)

	year, ok := f.Get(FieldYear)
	require.True(t, ok)
	assert.Equal(t, 2023, year.Value)
}

func TestBuildBiddingFilter_NonNumericFieldsAreOmitted(t *testing.T) {
	cases := []domain.BiddingQuery{
		{Modality: "abc"},
		{Year: "20x3"},
		{Modality: "1.5", Year: "NaN"},
	}
	for _, q := range cases {
		f := BuildBiddingFilter(q)
		_, hasMod := f.Get(FieldModalityID)
		_, hasYear := f.Get(FieldYear)
		assert.False(t, hasMod, "query %+v", q)
		assert.False(t, hasYear, "query %+v", q)
	}
}

func TestBuildBiddingFilter_TextAndCodeFields(t *testing.T) {
	f := BuildBiddingFilter(domain.BiddingQuery{
		State:        "minas",
		Municipality: "Belo",
		Unit:         "926121",
		Organ:        "00394460000141",
	})
	require.Len(t, f, 4)

	state, _ := f.Get(FieldState)
	assert.Equal(t, domain.Filter{Field: FieldState, Op: domain.OpRegex, Value: "minas"}, state)

	city, _ := f.Get(FieldMunicipality)
	assert.Equal(t, domain.OpRegex, city.Op)

	unit, _ := f.Get(FieldUnitCode)
	assert.Equal(t, domain.Filter{Field: FieldUnitCode, Op: domain.OpEq, Value: "926121"}, unit)

	organ, _ := f.Get(FieldOrganCode)
	assert.Equal(t, "00394460000141", organ.Value)
}

func TestBuildBiddingFilter_Idempotent(t *testing.T) {
	q := domain.BiddingQuery{Modality: "8", Year: "2024", State: "SP", Municipality: "campinas", Unit: "1", Organ: "2"}
	assert.Equal(t, BuildBiddingFilter(q), BuildBiddingFilter(q))
}
