package database

import (
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/facette/natsort"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// StatusSummary aggregates generation progress across the whole store.
type StatusSummary struct {
	Total       int64 `json:"total"`
	Prompted    int64 `json:"prompted"`
	Completed   int64 `json:"completed"`
	NeedPrompts int64 `json:"need_prompts"`
	NeedImages  int64 `json:"need_images"`
}

// CategorySummary aggregates generation progress for one category/subcategory pair.
type CategorySummary struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Total       int64  `json:"total"`
	Prompted    int64  `json:"prompted"`
	Completed   int64  `json:"completed"`
}

// GetStatusSummary computes overall progress counts in a single query.
func GetStatusSummary(db *sql.DB) (StatusSummary, error) {
	queryBuilder := psql.Select(
		"COUNT(*)",
		fmt.Sprintf("COALESCE(SUM(status IN ('%s', '%s')), 0)", StatusPrompted, StatusCompleted),
		fmt.Sprintf("COALESCE(SUM(status = '%s'), 0)", StatusCompleted),
		fmt.Sprintf("COALESCE(SUM(status = '%s'), 0)", StatusPending),
		fmt.Sprintf("COALESCE(SUM(status = '%s'), 0)", StatusPrompted),
	).From("admin_profiles")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return StatusSummary{}, fmt.Errorf("failed to build SQL query for GetStatusSummary: %w", err)
	}

	var summary StatusSummary
	err = db.QueryRow(sqlStr, args...).Scan(
		&summary.Total,
		&summary.Prompted,
		&summary.Completed,
		&summary.NeedPrompts,
		&summary.NeedImages,
	)
	if err != nil {
		return StatusSummary{}, fmt.Errorf("failed to query or scan status summary: %w", err)
	}
	return summary, nil
}

// GetCategorySummaries computes per category/subcategory progress counts,
// naturally sorted by category then subcategory
func GetCategorySummaries(db *sql.DB) ([]CategorySummary, error) {
	queryBuilder := psql.Select(
		"category",
		"subcategory",
		"COUNT(*)",
		fmt.Sprintf("COALESCE(SUM(status IN ('%s', '%s')), 0)", StatusPrompted, StatusCompleted),
		fmt.Sprintf("COALESCE(SUM(status = '%s'), 0)", StatusCompleted),
	).From("admin_profiles").
		GroupBy("category", "subcategory")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetCategorySummaries: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summaries: %w", err)
	}
	defer rows.Close()

	var summaries []CategorySummary
	for rows.Next() {
		var s CategorySummary
		if err := rows.Scan(&s.Category, &s.Subcategory, &s.Total, &s.Prompted, &s.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan category summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category summaries: %w", err)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Category != summaries[j].Category {
			return natsort.Compare(summaries[i].Category, summaries[j].Category)
		}
		return natsort.Compare(summaries[i].Subcategory, summaries[j].Subcategory)
	})

	return summaries, nil
}
