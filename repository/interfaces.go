package repository

import (
	"github.com/camden-git/personagen/models"
)

// ProfileRepositoryInterface defines the methods for admin profile data operations
type ProfileRepositoryInterface interface {
	// Upsert inserts a new profile if its admin ID is absent and reports
	// whether a row was created; an existing row is left untouched
	Upsert(profile *models.AdminProfile) (created bool, err error)

	// ListPendingPrompts returns profiles awaiting prompt generation,
	// ordered by admin ID ascending
	ListPendingPrompts() ([]models.AdminProfile, error)
	// ListPendingImages returns profiles with a prompt but no image,
	// ordered by admin ID ascending
	ListPendingImages() ([]models.AdminProfile, error)

	MarkPromptDone(adminID int64, positive, negative string) error
	MarkImageDone(adminID int64, imagePath string) error

	// read-only projections for inspection tooling
	GetByAdminID(adminID int64) (*models.AdminProfile, error)
	ListAll() ([]models.AdminProfile, error)
	ListByCategory(category, subcategory string) ([]models.AdminProfile, error)
	ListByStatus(status string) ([]models.AdminProfile, error)
}
