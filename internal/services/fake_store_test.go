package services

import (
	"context"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

type aggregateCall struct {
	report string
	filter domain.BiddingFilter
}

type listCall struct {
	source domain.Source
	filter domain.BiddingFilter
	page   domain.PageParams
}

// fakeStore answers Aggregate from rows, keyed by report name. Each value must
// have the exact slice type the caller decodes into.
type fakeStore struct {
	rows  map[string]any
	count int64
	list  []bson.M
	total int64
	err   error

	aggregates []aggregateCall
	lists      []listCall
}

func (f *fakeStore) Aggregate(_ context.Context, report string, filter domain.BiddingFilter, out any) error {
	f.aggregates = append(f.aggregates, aggregateCall{report: report, filter: filter})
	if f.err != nil {
		return f.err
	}
	if v, ok := f.rows[report]; ok {
		reflect.ValueOf(out).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func (f *fakeStore) CountBiddings(_ context.Context, _ domain.BiddingFilter) (int64, error) {
	return f.count, f.err
}

func (f *fakeStore) ListBiddings(_ context.Context, source domain.Source, filter domain.BiddingFilter, page domain.PageParams) ([]bson.M, int64, error) {
	f.lists = append(f.lists, listCall{source: source, filter: filter, page: page})
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.list, f.total, nil
}
