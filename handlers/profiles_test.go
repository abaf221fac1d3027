package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/personagen/database"
	"github.com/camden-git/personagen/models"
	"github.com/camden-git/personagen/repository"
)

func setupHandler(t *testing.T) (*ProfileHandler, *repository.ProfileRepository) {
	t.Helper()

	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying sql.DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	repo := repository.NewProfileRepository(db)
	return &ProfileHandler{Repo: repo, SQLDB: sqlDB}, repo
}

func testRouter(h *ProfileHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", h.ListProfiles)
		r.Get("/profiles/{admin_id}", h.GetProfile)
		r.Get("/summary", h.GetSummary)
		r.Get("/categories", h.GetCategories)
	})
	return r
}

func seedProfiles(t *testing.T, repo *repository.ProfileRepository) {
	t.Helper()
	profiles := []models.AdminProfile{
		{AdminID: 1, FirstName: "Anna", LastName: "Keller", Category: "universities", Subcategory: "medical_schools"},
		{AdminID: 2, FirstName: "Ben", LastName: "Ozols", Category: "universities", Subcategory: "law_schools"},
		{AdminID: 3, FirstName: "Cara", LastName: "Vitols", Category: "schools", Subcategory: "primary"},
	}
	for i := range profiles {
		if _, err := repo.Upsert(&profiles[i]); err != nil {
			t.Fatalf("failed to seed profile %d: %v", profiles[i].AdminID, err)
		}
	}
	if err := repo.MarkPromptDone(2, "positive", "negative"); err != nil {
		t.Fatalf("failed to mark profile 2 prompted: %v", err)
	}
}

func doRequest(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestListProfiles(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var profiles []models.AdminProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(profiles) != 3 {
		t.Errorf("got %d profiles, want 3", len(profiles))
	}
}

func TestListProfilesByStatus(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles?status=prompted")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var profiles []models.AdminProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(profiles) != 1 || profiles[0].AdminID != 2 {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}

func TestListProfilesInvalidStatus(t *testing.T) {
	h, _ := setupHandler(t)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles?status=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Code != "invalid_status" {
		t.Errorf("unexpected error payload: %+v", resp)
	}
}

func TestListProfilesByCategory(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles?category=universities&subcategory=law_schools")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var profiles []models.AdminProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(profiles) != 1 || profiles[0].AdminID != 2 {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}

func TestGetProfile(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var profile models.AdminProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile.AdminID != 1 || profile.FirstName != "Anna" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	h, _ := setupHandler(t)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles/999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetProfileBadID(t *testing.T) {
	h, _ := setupHandler(t)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/profiles/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summary database.StatusSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.Total != 3 || summary.Prompted != 1 || summary.NeedPrompts != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestGetCategoriesEmptyStore(t *testing.T) {
	h, _ := setupHandler(t)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summaries []database.CategorySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Errorf("want empty array, got %v", summaries)
	}
}

func TestGetCategories(t *testing.T) {
	h, repo := setupHandler(t)
	seedProfiles(t, repo)
	router := testRouter(h)

	rec := doRequest(t, router, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summaries []database.CategorySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(summaries) != 3 {
		t.Errorf("got %d category summaries, want 3", len(summaries))
	}
}
