package service

import (
	"context"

	"memoryarena/internal/domain"
	"memoryarena/internal/logger"
	"memoryarena/internal/repository"
)

// ResultService persists completed-game records and folds them into
// profile stats. It implements the engine's ResultSink.
type ResultService struct {
	results  *repository.ResultRepository
	profiles *repository.ProfileRepository
}

func NewResultService(results *repository.ResultRepository, profiles *repository.ProfileRepository) *ResultService {
	return &ResultService{results: results, profiles: profiles}
}

// RecordMatchResult writes one participant's record of a finished
// multiplayer match.
func (s *ResultService) RecordMatchResult(ctx context.Context, rec *domain.MatchRecord) error {
	if err := s.results.Create(ctx, rec); err != nil {
		return err
	}
	if err := s.profiles.ApplyResult(ctx, rec.UID, rec.GameType, rec.Score, rec.IsWin); err != nil {
		// The record itself landed; stats drift is logged, not fatal.
		logger.Warn("profile stats update failed", "uid", rec.UID, "error", err)
	}
	return nil
}

// RecordSoloResult writes a single-player result submitted over REST.
func (s *ResultService) RecordSoloResult(ctx context.Context, rec *domain.MatchRecord) error {
	rec.Mode = domain.ModeSingle
	rec.RoomID = nil
	return s.RecordMatchResult(ctx, rec)
}
