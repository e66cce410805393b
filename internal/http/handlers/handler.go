package handlers

import (
	"memoryarena/internal/repository"
	"memoryarena/internal/room"
	"memoryarena/internal/service"
	"memoryarena/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB        *pgxpool.Pool
	Store     store.DocumentStore
	Lifecycle *room.Lifecycle
	Engine    *room.Engine
	Profiles  *repository.ProfileRepository
	Results   *repository.ResultRepository
	ResultSvc *service.ResultService
}

func NewHandler(db *pgxpool.Pool, st store.DocumentStore, lc *room.Lifecycle, eng *room.Engine) *Handler {
	profiles := repository.NewProfileRepository(db)
	results := repository.NewResultRepository(db)
	return &Handler{
		DB:        db,
		Store:     st,
		Lifecycle: lc,
		Engine:    eng,
		Profiles:  profiles,
		Results:   results,
		ResultSvc: service.NewResultService(results, profiles),
	}
}
