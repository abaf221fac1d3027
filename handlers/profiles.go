package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/personagen/database"
	"github.com/camden-git/personagen/repository"
)

// ProfileHandler exposes the record store as a read-only inspection API. It
// never mutates pipeline state.
type ProfileHandler struct {
	Repo  repository.ProfileRepositoryInterface
	SQLDB *sql.DB
}

// ListProfiles returns profiles, optionally filtered by status or by
// category/subcategory query parameters
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")
	subcategory := r.URL.Query().Get("subcategory")

	switch {
	case status != "":
		if status != database.StatusPending && status != database.StatusPrompted && status != database.StatusCompleted {
			WriteAPIError(w, http.StatusBadRequest, "invalid_status", "status must be pending, prompted or completed")
			return
		}
		profiles, err := h.Repo.ListByStatus(status)
		if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "list_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	case category != "":
		profiles, err := h.Repo.ListByCategory(category, subcategory)
		if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "list_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	default:
		profiles, err := h.Repo.ListAll()
		if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "list_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

// GetProfile returns one profile by its administrator identifier
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	adminIDStr := chi.URLParam(r, "admin_id")
	adminID, err := strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_admin_id", "admin_id must be an integer")
		return
	}

	profile, err := h.Repo.GetByAdminID(adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "no profile with that admin_id")
			return
		}
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// GetSummary returns overall generation progress counts
func (h *ProfileHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := database.GetStatusSummary(h.SQLDB)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "summary_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetCategories returns per category/subcategory progress counts
func (h *ProfileHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := database.GetCategorySummaries(h.SQLDB)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "categories_failed", err.Error())
		return
	}
	if summaries == nil {
		summaries = []database.CategorySummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
