package main

import (
	"time"

	"github.com/zaikaman/kaspaclash/internal/constants"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/service"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// startDeadlineSweeper runs the periodic deadline enforcement loop. It is
// the safety net behind the client-driven timeout reports: every expired
// selection and every expired round is eventually picked up here, and the
// resolver's idempotent handlers make double handling harmless. Rounds are
// processed sequentially to keep SQLite happy.
func startDeadlineSweeper(repo storage.Repository, resolver *service.Resolver, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()

			matches, err := repo.FindExpiredSelections(now)
			if err != nil {
				logging.Error("sweeper failed to list expired selections", err, nil)
			} else {
				for _, m := range matches {
					if _, err := resolver.HandleSelectionTimeout(m.JoinCode); err != nil {
						logging.Error("sweeper failed to time out selection", err, logging.Fields{
							constants.LogFieldMatchID: m.ID,
						})
					}
				}
			}

			rounds, err := repo.FindExpiredRounds(now)
			if err != nil {
				logging.Error("sweeper failed to list expired rounds", err, nil)
				continue
			}
			for _, round := range rounds {
				m, err := repo.GetMatchByID(round.MatchID)
				if err != nil {
					continue
				}
				if _, err := resolver.HandleTimeout(m.JoinCode, round.RoundNumber); err != nil {
					// The grace window makes DeadlineNotReached expected for
					// rounds that expired between query and handling.
					if err == service.ErrDeadlineNotReached {
						continue
					}
					logging.Error("sweeper failed to time out round", err, logging.Fields{
						constants.LogFieldMatchID:  round.MatchID,
						constants.LogFieldRoundNum: round.RoundNumber,
					})
				}
			}
		}
	}()
}
