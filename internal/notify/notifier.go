// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// Embed colors
const (
	colorCTFdSolve = 0x2ECC71
	colorHTBSolve  = 0x9FEF00
)

// MessageTypeSolve is the live feed message type for announced solves.
const MessageTypeSolve = "solve"

// DBInterface defines the store operations the notifier needs.
// Implemented by *database.DB.
type DBInterface interface {
	MarkChallengeSolved(ctx context.Context, id int64, solver string, solvedAt time.Time) error
	MarkHTBChallengeSolved(ctx context.Context, id int64, solver string, solvedAt time.Time) error
	MarkHTBSolveAnnounced(ctx context.Context, solveID int64) error
	GetDiscordID(ctx context.Context, htbID int64) (int64, error)
	LatestRank(ctx context.Context) (*models.RankSnapshot, error)
	InsertRank(ctx context.Context, rank, points int) (*models.RankSnapshot, error)
}

// WebSocketHub broadcasts messages to live feed clients.
// Implemented by internal/websocket/Hub
type WebSocketHub interface {
	BroadcastJSON(messageType string, data interface{})
}

// SolveEvent is the live feed payload for an announced solve.
type SolveEvent struct {
	Competition string              `json:"competition"`
	Provider    string              `json:"provider"`
	Solve       models.PendingSolve `json:"solve"`
	Place       string              `json:"place"`
	Score       int                 `json:"score"`
}

// Notifier announces solves and records that they were announced.
type Notifier struct {
	db     DBInterface
	sender Sender
	hub    WebSocketHub
}

// New creates a notifier. hub may be nil.
func New(db DBInterface, sender Sender, hub WebSocketHub) *Notifier {
	return &Notifier{db: db, sender: sender, hub: hub}
}

// Announce sends one solve to the target's channel and, only once the send
// succeeded, marks it announced. A failed send leaves the solve unannounced so
// the next tick finds it again. A channel id of 0 skips the send.
func (n *Notifier) Announce(ctx context.Context, target provider.Target, solve models.PendingSolve) error {
	kind := string(target.Kind())

	stats, err := target.Provider.TeamStats(ctx)
	if err != nil {
		metrics.Announcements.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("fetch team stats for %s: %w", target.Name, err)
	}

	if target.ChannelID == 0 {
		metrics.Announcements.WithLabelValues(kind, "skipped").Inc()
	} else {
		msg := n.buildMessage(ctx, target, solve, stats)
		if err := n.sender.SendMessage(ctx, target.ChannelID, msg); err != nil {
			metrics.Announcements.WithLabelValues(kind, "failed").Inc()
			return fmt.Errorf("announce %q for %s: %w", solve.ChallengeName, target.Name, err)
		}
		metrics.Announcements.WithLabelValues(kind, "sent").Inc()
	}

	if err := n.markAnnounced(ctx, solve); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("target", target.Name).
		Str("challenge", solve.ChallengeName).
		Str("solver", solve.Solver).
		Str("place", stats.Place).
		Int("score", stats.Score).
		Msg("Solve announced")

	if target.IsHTB() {
		n.updateRank(ctx, target, stats)
	}

	if n.hub != nil {
		n.hub.BroadcastJSON(MessageTypeSolve, SolveEvent{
			Competition: target.Name,
			Provider:    kind,
			Solve:       solve,
			Place:       stats.Place,
			Score:       stats.Score,
		})
	}
	return nil
}

func (n *Notifier) markAnnounced(ctx context.Context, solve models.PendingSolve) error {
	if !solve.PerUser() {
		if err := n.db.MarkChallengeSolved(ctx, solve.ChallengeID, solve.Solver, solve.SolvedAt); err != nil {
			return fmt.Errorf("mark challenge %d solved: %w", solve.ChallengeID, err)
		}
		return nil
	}

	if err := n.db.MarkHTBSolveAnnounced(ctx, solve.SolveID); err != nil {
		return fmt.Errorf("mark htb solve %d announced: %w", solve.SolveID, err)
	}
	if err := n.db.MarkHTBChallengeSolved(ctx, solve.ChallengeID, solve.Solver, solve.SolvedAt); err != nil {
		return fmt.Errorf("mark htb challenge %d solved: %w", solve.ChallengeID, err)
	}
	return nil
}

// buildMessage formats the solve embed. HTB solvers with a Discord mapping
// are mentioned in the message content.
func (n *Notifier) buildMessage(ctx context.Context, target provider.Target, solve models.PendingSolve, stats *models.TeamStats) *Message {
	embed := Embed{
		Title:       fmt.Sprintf("🏴 %s has been solved by %s 🏴", solve.ChallengeName, solve.Solver),
		Description: fmt.Sprintf("📈 New team position: %s, Total score: %d", stats.Place, stats.Score),
		Color:       colorCTFdSolve,
		Fields: []EmbedField{
			{Name: "📚 Category", Value: solve.Category, Inline: true},
			{Name: "💰 Points", Value: strconv.Itoa(solve.Points), Inline: true},
		},
	}
	if !solve.SolvedAt.IsZero() {
		embed.Timestamp = solve.SolvedAt.UTC().Format(time.RFC3339)
	}

	msg := &Message{}
	if target.IsHTB() {
		embed.Color = colorHTBSolve
		embed.Fields = append(embed.Fields, EmbedField{Name: "🧩 Type", Value: solve.Kind, Inline: true})

		discordID, err := n.db.GetDiscordID(ctx, solve.SolverID)
		switch {
		case err == nil:
			msg.Content = fmt.Sprintf("<@%d>", discordID)
		case !errors.Is(err, database.ErrNotFound):
			logging.Ctx(ctx).Warn().Err(err).Int64("htb_user", solve.SolverID).Msg("Failed to look up Discord mapping")
		}
	}
	msg.Embeds = []Embed{embed}
	return msg
}

// updateRank appends a rank snapshot and edits the channel topic when the
// team's rank or points moved. Failures are logged only: the solve itself is
// already announced.
func (n *Notifier) updateRank(ctx context.Context, target provider.Target, stats *models.TeamStats) {
	latest, err := n.db.LatestRank(ctx)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read latest HTB rank")
		return
	}
	if latest != nil && latest.Rank == stats.Rank && latest.Points == stats.Score {
		return
	}

	if _, err := n.db.InsertRank(ctx, stats.Rank, stats.Score); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record HTB rank")
		return
	}
	if target.ChannelID == 0 {
		return
	}

	if err := n.sender.SetTopic(ctx, target.ChannelID, RankTopic(stats)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("channel_id", target.ChannelID).Msg("Failed to update channel topic")
	}
}

// RankTopic formats the HTB channel topic.
func RankTopic(stats *models.TeamStats) string {
	return fmt.Sprintf("🏆 Rank %d | 💰 %d points | 👤 %d user owns | 💻 %d system owns",
		stats.Rank, stats.Score, stats.UserOwns, stats.SystemOwns)
}
