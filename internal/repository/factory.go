package repository

import (
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// DatabaseFactory must be implemented by each database package / Doit être implémenté par chaque package de BD
// Adding a repository here forces every dialect (sqlite, mysql) to provide it.
// Ajouter un repository ici oblige chaque dialecte (sqlite, mysql) à le fournir.
type DatabaseFactory interface {
	NewUserRepository(db ports.DBTX) ports.UserRepository
	NewRefreshTokenStore(db ports.DBTX) ports.RefreshTokenStore
	NewProductRepository(db ports.DBTX) ports.ProductRepository
	NewSemaineRepository(db ports.DBTX) ports.SemaineRepository
	NewPlanificationRepository(db ports.DBTX) ports.PlanificationRepository
	NewNonConformiteRepository(db ports.DBTX) ports.NonConformiteRepository
	NewCommentaireRepository(db ports.DBTX) ports.CommentaireRepository
	NewOuvrierRepository(db ports.DBTX) ports.OuvrierRepository
	NewStatutOuvrierRepository(db ports.DBTX) ports.StatutOuvrierRepository
	NewSelectionRepository(db ports.DBTX) ports.SelectionRepository
	NewRapportRepository(db ports.DBTX) ports.RapportRepository
	NewActivityRepository(db ports.DBTX) ports.ActivityRepository
}
