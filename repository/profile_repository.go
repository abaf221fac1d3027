package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/personagen/database"
	"github.com/camden-git/personagen/models"
)

// ErrInvalidState is returned when a profile is asked to advance to a status
// it cannot reach from its current one (e.g. an image result on a profile that
// has no prompt yet). It indicates a programming error upstream.
var ErrInvalidState = errors.New("profile is not in the required state")

// ProfileRepository handles database operations for AdminProfile entities
type ProfileRepository struct {
	DB *gorm.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Upsert creates the profile record unless a row with the same admin ID already
// exists. Duplicates are an expected, recoverable condition during re-ingestion,
// so they are reported via the created flag rather than an error.
func (r *ProfileRepository) Upsert(profile *models.AdminProfile) (bool, error) {
	if profile.Status == "" {
		profile.Status = database.StatusPending
	}

	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		DoNothing: true,
	}).Create(profile)

	if result.Error != nil {
		return false, fmt.Errorf("failed to upsert profile for admin %d: %w", profile.AdminID, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// ListPendingPrompts retrieves profiles that still need prompt generation
func (r *ProfileRepository) ListPendingPrompts() ([]models.AdminProfile, error) {
	var profiles []models.AdminProfile
	err := r.DB.Where("status = ?", database.StatusPending).
		Order("admin_id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles pending prompts: %w", err)
	}
	return profiles, nil
}

// ListPendingImages retrieves profiles that have prompts but no image yet
func (r *ProfileRepository) ListPendingImages() ([]models.AdminProfile, error) {
	var profiles []models.AdminProfile
	err := r.DB.Where("status = ?", database.StatusPrompted).
		Order("admin_id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles pending images: %w", err)
	}
	return profiles, nil
}

// MarkPromptDone stores the generated prompt pair and advances the profile to
// the prompted status in a single update
func (r *ProfileRepository) MarkPromptDone(adminID int64, positive, negative string) error {
	updates := map[string]interface{}{
		"positive_prompt": positive,
		"negative_prompt": negative,
		"status":          database.StatusPrompted,
	}

	result := r.DB.Model(&models.AdminProfile{}).Where("admin_id = ?", adminID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark prompt done for admin %d: %w", adminID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkImageDone stores the image path and advances the profile to the completed
// status. The profile must already be prompted; updating status and path in one
// guarded statement keeps the transition atomic.
func (r *ProfileRepository) MarkImageDone(adminID int64, imagePath string) error {
	updates := map[string]interface{}{
		"image_path": imagePath,
		"status":     database.StatusCompleted,
	}

	result := r.DB.Model(&models.AdminProfile{}).
		Where("admin_id = ? AND status = ?", adminID, database.StatusPrompted).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark image done for admin %d: %w", adminID, result.Error)
	}
	if result.RowsAffected == 0 {
		// distinguish a missing row from a state violation
		var count int64
		if err := r.DB.Model(&models.AdminProfile{}).Where("admin_id = ?", adminID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check profile existence for admin %d: %w", adminID, err)
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInvalidState
	}
	return nil
}

// GetByAdminID retrieves a single profile by its administrator identifier
func (r *ProfileRepository) GetByAdminID(adminID int64) (*models.AdminProfile, error) {
	var profile models.AdminProfile
	err := r.DB.Where("admin_id = ?", adminID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile for admin %d: %w", adminID, err)
	}
	return &profile, nil
}

// ListAll retrieves every profile, ordered for stable inspection output
func (r *ProfileRepository) ListAll() ([]models.AdminProfile, error) {
	var profiles []models.AdminProfile
	err := r.DB.Order("category ASC, subcategory ASC, admin_id ASC").Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// ListByCategory retrieves profiles in a category, optionally narrowed to one
// subcategory
func (r *ProfileRepository) ListByCategory(category, subcategory string) ([]models.AdminProfile, error) {
	query := r.DB.Where("category = ?", category)
	if subcategory != "" {
		query = query.Where("subcategory = ?", subcategory)
	}

	var profiles []models.AdminProfile
	err := query.Order("subcategory ASC, admin_id ASC").Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles for category %s: %w", category, err)
	}
	return profiles, nil
}

// ListByStatus retrieves profiles with the given generation status
func (r *ProfileRepository) ListByStatus(status string) ([]models.AdminProfile, error) {
	var profiles []models.AdminProfile
	err := r.DB.Where("status = ?", status).Order("admin_id ASC").Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles with status %s: %w", status, err)
	}
	return profiles, nil
}
