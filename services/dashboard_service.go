package services

import (
	"context"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
	"golang.org/x/sync/errgroup"
)

// DashboardService aggregates event-wide counters for the staff overview.
type DashboardService interface {
	EventStats(ctx context.Context) (*models.EventStats, error)
}

type dashboardService struct {
	playerRepo        repositories.PlayerRepository
	teamRepo          repositories.TeamRepository
	participationRepo repositories.ParticipationRepository
	fixtureRepo       repositories.FixtureRepository
	sports            catalog.SportCatalog
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	participationRepo repositories.ParticipationRepository,
	fixtureRepo repositories.FixtureRepository,
	sports catalog.SportCatalog,
) DashboardService {
	return &dashboardService{
		playerRepo:        playerRepo,
		teamRepo:          teamRepo,
		participationRepo: participationRepo,
		fixtureRepo:       fixtureRepo,
		sports:            sports,
	}
}

func (s *dashboardService) EventStats(ctx context.Context) (*models.EventStats, error) {
	year := s.sports.EventYear()
	stats := &models.EventStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.PlayersTotal, err = s.playerRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TeamsTotal, err = s.teamRepo.Count(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		stats.EnrollmentsTotal, err = s.participationRepo.Count(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		stats.FixturesTotal, err = s.fixtureRepo.Count(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		stats.FixturesScheduled, err = s.fixtureRepo.CountByStatus(gctx, year, models.FixtureScheduled)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.FixturesResolved = stats.FixturesTotal - stats.FixturesScheduled
	return stats, nil
}
