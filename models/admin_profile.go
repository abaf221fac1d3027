package models

import "time"

// AdminProfile represents one organizational administrator extracted from the
// source JSON tree. It corresponds to the 'admin_profiles' table.
//
// Status replaces the original pair of prompt/image booleans: a profile moves
// pending -> prompted -> completed, so an image can never exist without a prompt.
type AdminProfile struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SourceFile  string `gorm:"not null" json:"source_file"`
	Category    string `gorm:"not null;index" json:"category"`
	Subcategory string `gorm:"index" json:"subcategory"`

	AdminID int64 `gorm:"uniqueIndex;not null" json:"admin_id"` // natural key for idempotent re-ingestion

	FirstName        string `gorm:"" json:"first_name"`
	LastName         string `gorm:"" json:"last_name"`
	Email            string `gorm:"" json:"email"`
	PhoneNumber      string `gorm:"" json:"phone_number"`
	OrganizationName string `gorm:"" json:"organization_name"`
	OrganizationTown string `gorm:"" json:"organization_town"`
	Languages        string `gorm:"" json:"languages"` // comma-joined list, source order preserved

	PositivePrompt *string `gorm:"" json:"positive_prompt,omitempty"` // Nullable until prompt stage
	NegativePrompt *string `gorm:"" json:"negative_prompt,omitempty"` // Nullable
	ImagePath      *string `gorm:"" json:"image_path,omitempty"`      // Nullable until image stage

	Status string `gorm:"not null;default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (AdminProfile) TableName() string {
	return "admin_profiles"
}

// PromptGenerated reports whether the prompt stage has completed for this profile.
func (p *AdminProfile) PromptGenerated() bool {
	return p.Status == "prompted" || p.Status == "completed"
}

// ImageGenerated reports whether the image stage has completed for this profile.
func (p *AdminProfile) ImageGenerated() bool {
	return p.Status == "completed"
}

// DisplayName returns the administrator's full name for logging.
func (p *AdminProfile) DisplayName() string {
	switch {
	case p.FirstName == "" && p.LastName == "":
		return "(unnamed)"
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
