// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package commands

import (
	"context"

	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/validation"
)

// SearchHTB returns HTB challenges and machines whose name contains term.
func (s *Service) SearchHTB(ctx context.Context, term string) ([]models.HTBChallenge, error) {
	return s.db.SearchHTBChallenges(ctx, term)
}

// Solves lists a user's recorded HTB solves with their challenges, newest first.
func (s *Service) Solves(ctx context.Context, username string) ([]models.UserSolve, error) {
	return s.db.ListUserSolves(ctx, username)
}

// MapUser links an HTB user id to a Discord user id so announcements can
// mention them. Mapping an id again replaces the Discord id.
func (s *Service) MapUser(ctx context.Context, htbID, discordID int64) error {
	m := models.UserIdentityMapping{HTBID: htbID, DiscordID: discordID}
	if verr := validation.ValidateStruct(&m); verr != nil {
		return verr
	}
	if err := s.db.UpsertUserMapping(ctx, m); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int64("htb_id", htbID).Int64("discord_id", discordID).Msg("User mapping saved")
	return nil
}
