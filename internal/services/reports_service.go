package services

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/domain/models"
	"github.com/fabianabeda/datadriven-back/internal/repositories"
)

// Messages returned to clients on empty results.
const (
	MsgNoData          = "No data found"
	MsgBiddingNotFound = "Bidding not found"
)

// Store is the data access the reports need. *repositories.ReportsRepository
// implements it; tests substitute a fake.
type Store interface {
	Aggregate(ctx context.Context, report string, filter domain.BiddingFilter, out any) error
	CountBiddings(ctx context.Context, filter domain.BiddingFilter) (int64, error)
	ListBiddings(ctx context.Context, source domain.Source, filter domain.BiddingFilter, page domain.PageParams) ([]bson.M, int64, error)
}

// BiddingPage is one page of the bidding listing.
type BiddingPage struct {
	Biddings     []bson.M `json:"biddings"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
	TotalBidding int64    `json:"totalBidding"`
	TotalPages   int64    `json:"totalPages"`
}

type ReportsService struct {
	Store   Store
	Options domain.ReportOptions
}

// ListBiddings pages through the biddings of source.
func (s ReportsService) ListBiddings(ctx context.Context, source domain.Source, q domain.BiddingQuery) (BiddingPage, error) {
	filter := BuildBiddingFilter(q)
	page := ResolvePage(q.Page, q.Limit)

	rows, total, err := s.Store.ListBiddings(ctx, source, filter, page)
	if err != nil {
		return BiddingPage{}, domain.InternalError{Msg: "list biddings", Err: err}
	}
	if len(rows) == 0 {
		return BiddingPage{}, domain.NotFoundError{Resource: "bidding", Msg: MsgBiddingNotFound}
	}
	return BiddingPage{
		Biddings:     rows,
		Page:         page.Page,
		Limit:        page.Limit,
		TotalBidding: total,
		TotalPages:   int64(math.Ceil(float64(total) / float64(page.Limit))),
	}, nil
}

func (s ReportsService) StatusBreakdown(ctx context.Context, q domain.BiddingQuery) ([]models.GroupCount, error) {
	return aggregateNonEmpty[models.GroupCount](ctx, s.Store, repositories.ReportStatus, BuildBiddingFilter(q))
}

// ModalityShares returns each modality's share of the matching biddings.
func (s ReportsService) ModalityShares(ctx context.Context, q domain.BiddingQuery) ([]models.ModalityShare, error) {
	counts, err := aggregateNonEmpty[models.GroupCount](ctx, s.Store, repositories.ReportModality, BuildBiddingFilter(q))
	if err != nil {
		return nil, err
	}
	return Shares(counts), nil
}

func (s ReportsService) OrganBreakdown(ctx context.Context, q domain.BiddingQuery) ([]models.GroupCount, error) {
	return aggregateNonEmpty[models.GroupCount](ctx, s.Store, repositories.ReportOrgan, BuildBiddingFilter(q))
}

func (s ReportsService) YearBreakdown(ctx context.Context, q domain.BiddingQuery) ([]models.GroupCount, error) {
	return aggregateNonEmpty[models.GroupCount](ctx, s.Store, repositories.ReportYear, BuildBiddingFilter(q))
}

// TotalBiddings counts the matching biddings. Zero is a valid answer.
func (s ReportsService) TotalBiddings(ctx context.Context, q domain.BiddingQuery) (models.TotalCount, error) {
	n, err := s.Store.CountBiddings(ctx, BuildBiddingFilter(q))
	if err != nil {
		return models.TotalCount{}, domain.InternalError{Msg: "count biddings", Err: err}
	}
	return models.TotalCount{Total: n}, nil
}

func (s ReportsService) TopItems(ctx context.Context, q domain.BiddingQuery) ([]models.ItemTotal, error) {
	return aggregateNonEmpty[models.ItemTotal](ctx, s.Store, repositories.ReportTopItems, BuildBiddingFilter(q))
}

func (s ReportsService) TotalValue(ctx context.Context, q domain.BiddingQuery) (models.ValueTotal, error) {
	rows, err := aggregateNonEmpty[models.ValueTotal](ctx, s.Store, repositories.ReportTotalValue, BuildBiddingFilter(q))
	if err != nil {
		return models.ValueTotal{}, err
	}
	return rows[0], nil
}

// SupplierTypes ignores the request filter.
func (s ReportsService) SupplierTypes(ctx context.Context) ([]models.GroupCount, error) {
	return aggregateNonEmpty[models.GroupCount](ctx, s.Store, repositories.ReportSupplierTypes, nil)
}

func (s ReportsService) TopCompanies(ctx context.Context, q domain.BiddingQuery) ([]models.CompanyCount, error) {
	return aggregateNonEmpty[models.CompanyCount](ctx, s.Store, repositories.ReportTopCompanies, BuildBiddingFilter(q))
}

// ParticipatingCompanies returns one entry per configured year, in order,
// with zero for years without suppliers.
func (s ReportsService) ParticipatingCompanies(ctx context.Context, q domain.BiddingQuery) ([]models.YearSuppliers, error) {
	var rows []models.YearSuppliers
	if err := s.Store.Aggregate(ctx, repositories.ReportParticipants, BuildBiddingFilter(q), &rows); err != nil {
		return nil, domain.InternalError{Msg: "aggregate " + repositories.ReportParticipants, Err: err}
	}
	return BackfillYears(s.Options.Years, rows), nil
}

func (s ReportsService) States(ctx context.Context, q domain.BiddingQuery) ([]models.StateName, error) {
	return aggregateNonEmpty[models.StateName](ctx, s.Store, repositories.ReportStates, BuildBiddingFilter(q))
}

// Shares converts grouped counts to percentages of their sum.
func Shares(counts []models.GroupCount) []models.ModalityShare {
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	out := make([]models.ModalityShare, 0, len(counts))
	for _, c := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(c.Count) / float64(total) * 100
		}
		out = append(out, models.ModalityShare{Modality: c.ID, Percentage: pct})
	}
	return out
}

// BackfillYears orders rows by years and fills missing years with zero.
// Rows for years outside the set are dropped.
func BackfillYears(years []int, rows []models.YearSuppliers) []models.YearSuppliers {
	byYear := make(map[int]int64, len(rows))
	for _, r := range rows {
		byYear[r.Year] += r.Suppliers
	}
	out := make([]models.YearSuppliers, 0, len(years))
	for _, y := range years {
		out = append(out, models.YearSuppliers{Year: y, Suppliers: byYear[y]})
	}
	return out
}

func aggregateNonEmpty[T any](ctx context.Context, store Store, report string, filter domain.BiddingFilter) ([]T, error) {
	var rows []T
	if err := store.Aggregate(ctx, report, filter, &rows); err != nil {
		return nil, domain.InternalError{Msg: "aggregate " + report, Err: err}
	}
	if len(rows) == 0 {
		return nil, domain.NotFoundError{Resource: report, Msg: MsgNoData}
	}
	return rows, nil
}
