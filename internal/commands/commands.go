// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
	"github.com/tomtom215/ctftracker/internal/provider/ctfd"
	"github.com/tomtom215/ctftracker/internal/reconcile"
	"github.com/tomtom215/ctftracker/internal/validation"
)

// Sentinel errors
var (
	// ErrChallengeNotFound is returned when a working-set command names a
	// challenge that is not tracked.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrCompetitionNotFound is returned for an unknown competition id.
	ErrCompetitionNotFound = errors.New("competition not found")
)

// DBInterface defines the store operations behind the commands.
// Implemented by *database.DB.
type DBInterface interface {
	CreateCompetition(ctx context.Context, comp *models.Competition) error
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
	GetActiveCompetitionByName(ctx context.Context, name string) (*models.Competition, error)
	ListActiveCompetitions(ctx context.Context) ([]models.Competition, error)
	DeactivateCompetition(ctx context.Context, id int64) error

	FindChallengeByName(ctx context.Context, competitionID int64, name string) (*models.Challenge, error)
	ListChallenges(ctx context.Context, competitionID int64) ([]models.Challenge, error)
	SearchChallenges(ctx context.Context, competitionID int64, term string) ([]models.Challenge, error)
	SetChallengeWorking(ctx context.Context, id int64, working models.WorkingSet) error

	FindHTBChallengeByName(ctx context.Context, name string) (*models.HTBChallenge, error)
	SearchHTBChallenges(ctx context.Context, term string) ([]models.HTBChallenge, error)
	SetHTBChallengeWorking(ctx context.Context, id int64, working models.WorkingSet) error
	ListUserSolves(ctx context.Context, username string) ([]models.UserSolve, error)
	UpsertUserMapping(ctx context.Context, m models.UserIdentityMapping) error

	LatestScore(ctx context.Context, competitionID int64) (*models.ScoreEntry, error)
}

// Reconciler seeds a new competition's catalogue.
// Implemented by *reconcile.Reconciler.
type Reconciler interface {
	ReconcileChallenges(ctx context.Context, target provider.Target) (reconcile.Result, error)
}

// ProviderFactory builds the provider that scores a competition.
type ProviderFactory func(comp *models.Competition) provider.Provider

// CTFdFactory returns a factory for breaker-wrapped CTFd clients with a
// solver name cache in front.
func CTFdFactory(timeout time.Duration) ProviderFactory {
	return func(comp *models.Competition) provider.Provider {
		breaker := provider.NewBreaker(ctfd.New(comp.APIURL, comp.APIKey, timeout), "ctfd-"+comp.Name)
		return provider.WithUserCache(breaker, 0, provider.DefaultUserCacheTTL)
	}
}

// StartRequest registers a competition.
type StartRequest struct {
	Name      string `json:"name" validate:"required,challengename,max=100"`
	BaseURL   string `json:"base_url" validate:"required,httpurl"`
	APIKey    string `json:"api_key" validate:"required"`
	ChannelID int64  `json:"channel_id" validate:"gte=0"`
}

type workingRequest struct {
	Challenge string `json:"challenge" validate:"required,challengename"`
	User      string `json:"user" validate:"required,workingmember"`
}

// Service implements the tracker's commands.
type Service struct {
	db       DBInterface
	registry *provider.Registry
	rec      Reconciler
	factory  ProviderFactory
}

// New creates the command service.
func New(db DBInterface, registry *provider.Registry, rec Reconciler, factory ProviderFactory) *Service {
	return &Service{db: db, registry: registry, rec: rec, factory: factory}
}

func (s *Service) target(comp *models.Competition) provider.Target {
	return provider.Target{
		ID:        comp.ID,
		Name:      comp.Name,
		ChannelID: comp.ChannelID,
		Provider:  s.factory(comp),
	}
}

// Start creates a competition, registers it for polling and runs the first
// catalogue reconcile. A failed first reconcile is logged only; the refresh
// loop retries it.
func (s *Service) Start(ctx context.Context, req StartRequest) (*models.Competition, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, verr
	}

	comp := &models.Competition{
		Name:      req.Name,
		BaseURL:   req.BaseURL,
		APIKey:    req.APIKey,
		ChannelID: req.ChannelID,
	}
	if err := s.db.CreateCompetition(ctx, comp); err != nil {
		return nil, err
	}

	target := s.target(comp)
	s.registry.Insert(target)

	res, err := s.rec.ReconcileChallenges(ctx, target)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("competition", comp.Name).Msg("Initial challenge reconcile failed")
	} else {
		logging.Ctx(ctx).Info().
			Str("competition", comp.Name).
			Int64("id", comp.ID).
			Int("challenges", res.Inserted).
			Msg("Competition started")
	}
	return comp, nil
}

// End deactivates a competition and stops polling it. Its history stays in
// the store.
func (s *Service) End(ctx context.Context, id int64) error {
	comp, err := s.competition(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeactivateCompetition(ctx, comp.ID); err != nil {
		return err
	}
	s.registry.Remove(comp.ID)

	logging.Ctx(ctx).Info().Str("competition", comp.Name).Int64("id", comp.ID).Msg("Competition ended")
	return nil
}

// Active lists the active competitions.
func (s *Service) Active(ctx context.Context) ([]models.Competition, error) {
	return s.db.ListActiveCompetitions(ctx)
}

// List returns every challenge of a competition.
func (s *Service) List(ctx context.Context, id int64) ([]models.Challenge, error) {
	if _, err := s.competition(ctx, id); err != nil {
		return nil, err
	}
	return s.db.ListChallenges(ctx, id)
}

// Search returns the challenges of a competition whose name contains term,
// case-insensitively.
func (s *Service) Search(ctx context.Context, id int64, term string) ([]models.Challenge, error) {
	if _, err := s.competition(ctx, id); err != nil {
		return nil, err
	}
	return s.db.SearchChallenges(ctx, id, term)
}

// Stats returns the latest scoreboard row of a competition, or
// database.ErrNotFound when none was recorded yet.
func (s *Service) Stats(ctx context.Context, id int64) (*models.ScoreEntry, error) {
	if _, err := s.competition(ctx, id); err != nil {
		return nil, err
	}
	return s.db.LatestScore(ctx, id)
}

func (s *Service) competition(ctx context.Context, id int64) (*models.Competition, error) {
	comp, err := s.db.GetCompetition(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrCompetitionNotFound, id)
	}
	return comp, err
}

// LoadActive registers every active competition from the store. It is run
// once at startup and returns the number of targets registered.
func (s *Service) LoadActive(ctx context.Context) (int, error) {
	comps, err := s.db.ListActiveCompetitions(ctx)
	if err != nil {
		return 0, err
	}
	for i := range comps {
		s.registry.Insert(s.target(&comps[i]))
	}
	return len(comps), nil
}

// Seed starts every configured competition that has no active competition
// of the same name yet. A seed that fails is logged and skipped.
func (s *Service) Seed(ctx context.Context, seeds []config.CompetitionSeed) int {
	started := 0
	for _, seed := range seeds {
		_, err := s.db.GetActiveCompetitionByName(ctx, seed.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			logging.Ctx(ctx).Error().Err(err).Str("competition", seed.Name).Msg("Failed to look up seeded competition")
			continue
		}

		_, err = s.Start(ctx, StartRequest{
			Name:      seed.Name,
			BaseURL:   seed.BaseURL,
			APIKey:    seed.APIKey,
			ChannelID: seed.ChannelID,
		})
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("competition", seed.Name).Msg("Failed to seed competition")
			continue
		}
		started++
	}
	return started
}
