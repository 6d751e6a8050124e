package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fabianabeda/datadriven-back/internal/domain"
)

// ReportsRepository runs the report catalog against MongoDB.
type ReportsRepository struct {
	DB      *mongo.Database
	Source  DataSource
	Options domain.ReportOptions
	Timeout time.Duration
	Log     *zap.Logger

	breaker *gobreaker.CircuitBreaker[struct{}]
}

// RepositoryConfig holds the construction parameters of a ReportsRepository.
type RepositoryConfig struct {
	Source  domain.Source
	Options domain.ReportOptions
	Timeout time.Duration
	Breaker BreakerSettings
}

func NewReportsRepository(db *mongo.Database, cfg RepositoryConfig, log *zap.Logger) *ReportsRepository {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Source.Valid() {
		log.Warn("unknown report source, using unified", zap.String("source", string(cfg.Source)))
	}
	return &ReportsRepository{
		DB:      db,
		Source:  SourceFor(cfg.Source),
		Options: cfg.Options,
		Timeout: cfg.Timeout,
		Log:     log,
		breaker: newBreaker(cfg.Breaker, log),
	}
}

// Aggregate runs the named report and decodes every row into out, which must
// be a pointer to a slice.
func (r *ReportsRepository) Aggregate(ctx context.Context, report string, filter domain.BiddingFilter, out any) error {
	pipeline, err := BuildPipeline(report, ReportParams{Source: r.Source, Filter: filter, Options: r.Options})
	if err != nil {
		return err
	}
	return r.run(ctx, report, func(ctx context.Context) error {
		cur, err := r.DB.Collection(r.Source.Collection).Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", report, err)
		}
		if err := cur.All(ctx, out); err != nil {
			return fmt.Errorf("decode %s: %w", report, err)
		}
		return nil
	})
}

// CountBiddings counts the biddings of the configured source matching filter.
func (r *ReportsRepository) CountBiddings(ctx context.Context, filter domain.BiddingFilter) (int64, error) {
	var n int64
	err := r.run(ctx, "total-licitacoes", func(ctx context.Context) error {
		var err error
		n, err = r.DB.Collection(r.Source.Collection).CountDocuments(ctx, FilterDocument(filter))
		if err != nil {
			return fmt.Errorf("count biddings: %w", err)
		}
		return nil
	})
	return n, err
}

// ListBiddings returns one page of biddings from source plus the total number
// of matching biddings.
func (r *ReportsRepository) ListBiddings(ctx context.Context, source domain.Source, filter domain.BiddingFilter, page domain.PageParams) ([]bson.M, int64, error) {
	src := SourceFor(source)
	coll := r.DB.Collection(src.Collection)
	label := "list-" + string(src.Name)

	var (
		rows  []bson.M
		total int64
	)
	err := r.run(ctx, label, func(ctx context.Context) error {
		var err error
		total, err = coll.CountDocuments(ctx, FilterDocument(filter))
		if err != nil {
			return fmt.Errorf("count %s: %w", src.Collection, err)
		}
		if total == 0 {
			return nil
		}
		cur, err := coll.Aggregate(ctx, ListPipeline(src, filter, page), options.Aggregate().SetAllowDiskUse(true))
		if err != nil {
			return fmt.Errorf("list %s: %w", src.Collection, err)
		}
		if err := cur.All(ctx, &rows); err != nil {
			return fmt.Errorf("decode %s: %w", src.Collection, err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Ping checks the connection with a short deadline.
func (r *ReportsRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.DB.Client().Ping(ctx, nil)
}

// DatabaseName returns the logical database name.
func (r *ReportsRepository) DatabaseName() string {
	return r.DB.Name()
}

func (r *ReportsRepository) run(ctx context.Context, label string, fn func(context.Context) error) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	if r.breaker != nil {
		_, err = r.breaker.Execute(func() (struct{}, error) {
			err := fn(ctx)
			if err != nil && errors.Is(ctx.Err(), context.Canceled) && !errors.Is(err, context.Canceled) {
				err = fmt.Errorf("%w: %w", context.Canceled, err)
			}
			return struct{}{}, err
		})
	} else {
		err = fn(ctx)
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	queryDuration.WithLabelValues(label, status).Observe(time.Since(start).Seconds())

	if err != nil && r.Log != nil {
		r.Log.Debug("report query failed", zap.String("report", label), zap.Error(err))
	}
	return err
}
