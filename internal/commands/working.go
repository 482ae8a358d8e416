// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/validation"
)

// Working-set updates are read-modify-write without a lock held across the
// read and the write: two users marking the same challenge at once race and
// the last write wins. A no-op change skips the write.

// MarkWorking adds user to the working set of a competition challenge and
// returns the resulting set. Adding a member twice is a no-op.
func (s *Service) MarkWorking(ctx context.Context, competitionID int64, challenge, user string) (models.WorkingSet, error) {
	ch, err := s.findChallenge(ctx, competitionID, challenge, user)
	if err != nil {
		return models.WorkingSet{}, err
	}
	working := ch.Working
	if working.Add(user) {
		if err := s.db.SetChallengeWorking(ctx, ch.ID, working); err != nil {
			return models.WorkingSet{}, err
		}
	}
	return working, nil
}

// ClearWorking removes user from the working set of a competition challenge.
// Removing a non-member is a no-op.
func (s *Service) ClearWorking(ctx context.Context, competitionID int64, challenge, user string) (models.WorkingSet, error) {
	ch, err := s.findChallenge(ctx, competitionID, challenge, user)
	if err != nil {
		return models.WorkingSet{}, err
	}
	working := ch.Working
	if working.Remove(user) {
		if err := s.db.SetChallengeWorking(ctx, ch.ID, working); err != nil {
			return models.WorkingSet{}, err
		}
	}
	return working, nil
}

// MarkHTBWorking adds user to the working set of an HTB challenge or machine.
func (s *Service) MarkHTBWorking(ctx context.Context, challenge, user string) (models.WorkingSet, error) {
	ch, err := s.findHTBChallenge(ctx, challenge, user)
	if err != nil {
		return models.WorkingSet{}, err
	}
	working := ch.Working
	if working.Add(user) {
		if err := s.db.SetHTBChallengeWorking(ctx, ch.ID, working); err != nil {
			return models.WorkingSet{}, err
		}
	}
	return working, nil
}

// ClearHTBWorking removes user from the working set of an HTB challenge or machine.
func (s *Service) ClearHTBWorking(ctx context.Context, challenge, user string) (models.WorkingSet, error) {
	ch, err := s.findHTBChallenge(ctx, challenge, user)
	if err != nil {
		return models.WorkingSet{}, err
	}
	working := ch.Working
	if working.Remove(user) {
		if err := s.db.SetHTBChallengeWorking(ctx, ch.ID, working); err != nil {
			return models.WorkingSet{}, err
		}
	}
	return working, nil
}

func (s *Service) findChallenge(ctx context.Context, competitionID int64, challenge, user string) (*models.Challenge, error) {
	if verr := validation.ValidateStruct(&workingRequest{Challenge: challenge, User: user}); verr != nil {
		return nil, verr
	}
	if _, err := s.competition(ctx, competitionID); err != nil {
		return nil, err
	}
	ch, err := s.db.FindChallengeByName(ctx, competitionID, challenge)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrChallengeNotFound, challenge)
	}
	return ch, err
}

func (s *Service) findHTBChallenge(ctx context.Context, challenge, user string) (*models.HTBChallenge, error) {
	if verr := validation.ValidateStruct(&workingRequest{Challenge: challenge, User: user}); verr != nil {
		return nil, verr
	}
	ch, err := s.db.FindHTBChallengeByName(ctx, challenge)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrChallengeNotFound, challenge)
	}
	return ch, err
}
