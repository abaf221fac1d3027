package media

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/camden-git/personagen/models"
	"github.com/camden-git/personagen/utils"
)

// fallback directory name for profiles ingested without a subcategory
const noSubcategoryDir = "no_subcategory"

// PortraitStore writes generated portrait images to the local filesystem,
// organized as <base>/<category>/<subcategory>/<filename>.png
type PortraitStore struct {
	basePath string
}

// NewPortraitStore creates a portrait store rooted at basePath
func NewPortraitStore(basePath string) (*PortraitStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base output path '%s': %w", basePath, err)
	}
	if err := utils.EnsureDir(absBasePath); err != nil {
		return nil, err
	}

	log.Printf("media.store: Initialized PortraitStore at %s", absBasePath)
	return &PortraitStore{basePath: absBasePath}, nil
}

// Filename derives the deterministic output filename for a profile from its
// administrator id and sanitized names
func Filename(profile *models.AdminProfile) string {
	return fmt.Sprintf("admin_%d_%s_%s.png",
		profile.AdminID,
		utils.SanitizeNameComponent(profile.FirstName),
		utils.SanitizeNameComponent(profile.LastName))
}

// Save decodes the raw image payload and writes it as PNG under the profile's
// category/subcategory directory, overwriting any previous file at that path.
// Returns the full path written.
func (s *PortraitStore) Save(profile *models.AdminProfile, imageData []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload for admin %d: %w", profile.AdminID, err)
	}

	subcategory := profile.Subcategory
	if subcategory == "" {
		subcategory = noSubcategoryDir
	}

	targetDir := filepath.Join(s.basePath, profile.Category, subcategory)
	if err := utils.EnsureDir(targetDir); err != nil {
		return "", err
	}

	outputPath := filepath.Join(targetDir, Filename(profile))
	if err := imaging.Save(img, outputPath); err != nil {
		return "", fmt.Errorf("failed to save portrait to %s: %w", outputPath, err)
	}

	log.Printf("media.store: saved portrait for admin %d at %s", profile.AdminID, outputPath)
	return outputPath, nil
}
