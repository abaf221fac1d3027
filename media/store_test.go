package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/camden-git/personagen/models"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestFilenameSanitizesNames(t *testing.T) {
	profile := &models.AdminProfile{
		AdminID:   42,
		FirstName: "Anna/Marie",
		LastName:  "O'Keller ",
	}

	got := Filename(profile)
	want := "admin_42_AnnaMarie_OKeller.png"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestSaveWritesCategoryTree(t *testing.T) {
	base := t.TempDir()
	store, err := NewPortraitStore(base)
	if err != nil {
		t.Fatalf("NewPortraitStore: %v", err)
	}

	profile := &models.AdminProfile{
		AdminID:     123,
		FirstName:   "Anna",
		LastName:    "Keller",
		Category:    "universities",
		Subcategory: "medical_schools",
	}

	path, err := store.Save(profile, pngBytes(t, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := filepath.Join(base, "universities", "medical_schools", "admin_123_Anna_Keller.png")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestSaveMissingSubcategoryUsesFallbackDir(t *testing.T) {
	base := t.TempDir()
	store, err := NewPortraitStore(base)
	if err != nil {
		t.Fatalf("NewPortraitStore: %v", err)
	}

	profile := &models.AdminProfile{AdminID: 9, FirstName: "Ben", Category: "schools"}
	path, err := store.Save(profile, pngBytes(t, color.White))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(base, "schools", "no_subcategory") {
		t.Errorf("unexpected directory: %q", path)
	}
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	base := t.TempDir()
	store, err := NewPortraitStore(base)
	if err != nil {
		t.Fatalf("NewPortraitStore: %v", err)
	}

	profile := &models.AdminProfile{AdminID: 7, FirstName: "A", LastName: "B", Category: "c", Subcategory: "s"}

	first, err := store.Save(profile, pngBytes(t, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	firstInfo, err := os.Stat(first)
	if err != nil {
		t.Fatalf("stat first: %v", err)
	}

	second, err := store.Save(profile, pngBytes(t, color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if first != second {
		t.Errorf("overwrite should reuse the deterministic path: %q vs %q", first, second)
	}
	secondData, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if firstInfo.Size() == 0 || len(secondData) == 0 {
		t.Error("empty image written")
	}
}

func TestSaveRejectsUndecodablePayload(t *testing.T) {
	store, err := NewPortraitStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPortraitStore: %v", err)
	}

	profile := &models.AdminProfile{AdminID: 1, Category: "c"}
	if _, err := store.Save(profile, []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}
