package booking

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

const matrixConcurrency = 8

// GetProviderDayMatrix builds the admin view: every active provider's cells
// for one date, with the occupant shown on occupied cells. No lead-time or
// past filtering applies.
type GetProviderDayMatrix struct {
	repo     domain.Repository
	settings Settings
	log      *zap.Logger
}

func NewGetProviderDayMatrix(
	repo domain.Repository,
	settings Settings,
	log *zap.Logger,
) *GetProviderDayMatrix {
	return &GetProviderDayMatrix{
		repo:     repo,
		settings: settings,
		log:      log,
	}
}

func (uc *GetProviderDayMatrix) Execute(
	ctx context.Context,
	date string,
) (*domain.DayMatrix, error) {

	if !timezone.IsDate(date) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	ctx, cancel := uc.settings.bound(ctx)
	defer cancel()

	providers, err := uc.repo.ListProviders(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DayRow, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matrixConcurrency)

	for i := range providers {
		i := i
		p := &providers[i]
		g.Go(func() error {
			v, err := loadDay(gctx, uc.repo, p, date)
			if err != nil {
				return err
			}

			row := domain.DayRow{
				ProviderID:   p.ID,
				ProviderName: p.Name,
				Cells:        []slot.CellState{},
			}
			if !v.working {
				row.Condition = httperr.CodeNoScheduleConfigured
			} else {
				row.Cells = v.states(uc.settings.CellMinutes, 0)
			}

			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.DayMatrix{Date: date, Rows: rows}, nil
}
