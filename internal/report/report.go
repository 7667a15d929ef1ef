package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lanehart/authd/internal/domain"
)

// Report is a point-in-time snapshot of the service surface and its
// user base, meant for operational review.
type Report struct {
	Service     string    `json:"service"`
	GeneratedAt time.Time `json:"generated_at"`
	Models      []Model   `json:"models"`
	Routes      []Route   `json:"routes"`
	Users       UserStats `json:"users"`
}

type Model struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

type Route struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

type UserStats struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Active     int `json:"active"`
	Superusers int `json:"superusers"`
}

const schemaQuery = `
SELECT table_name, column_name
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

const userStatsQuery = `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE is_verified),
	COUNT(*) FILTER (WHERE is_active),
	COUNT(*) FILTER (WHERE is_superuser)
FROM users`

// Build walks the routing tree and aggregates user counts. A nil mux
// or db skips the corresponding section.
func Build(ctx context.Context, db *sql.DB, mux chi.Routes) (Report, error) {
	r := Report{
		Service:     "authd",
		GeneratedAt: time.Now().UTC(),
	}

	if mux != nil {
		err := chi.Walk(mux, func(method, pattern string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			r.Routes = append(r.Routes, Route{Method: method, Pattern: pattern})
			return nil
		})
		if err != nil {
			return Report{}, domain.ErrInternal(err)
		}
		sort.Slice(r.Routes, func(i, j int) bool {
			if r.Routes[i].Pattern != r.Routes[j].Pattern {
				return r.Routes[i].Pattern < r.Routes[j].Pattern
			}
			return r.Routes[i].Method < r.Routes[j].Method
		})
	}

	if db != nil {
		models, err := loadModels(ctx, db)
		if err != nil {
			return Report{}, err
		}
		r.Models = models

		row := db.QueryRowContext(ctx, userStatsQuery)
		if err := row.Scan(&r.Users.Total, &r.Users.Verified, &r.Users.Active, &r.Users.Superusers); err != nil {
			return Report{}, domain.ErrDBUnavailable(err)
		}
	}

	return r, nil
}

func loadModels(ctx context.Context, db *sql.DB) ([]Model, error) {
	rows, err := db.QueryContext(ctx, schemaQuery)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		if len(models) == 0 || models[len(models)-1].Table != table {
			models = append(models, Model{Table: table})
		}
		models[len(models)-1].Columns = append(models[len(models)-1].Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return models, nil
}

// JSON renders the report indented for humans.
func (r Report) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, domain.ErrInternal(err)
	}
	return append(b, '\n'), nil
}
