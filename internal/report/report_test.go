package report

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
)

func nopHandler(w http.ResponseWriter, r *http.Request) {}

func testMux() *chi.Mux {
	m := chi.NewRouter()
	m.Post("/api/v1/auth/login", nopHandler)
	m.Post("/api/v1/auth/signup", nopHandler)
	m.Get("/healthz", nopHandler)
	return m
}

func TestBuild_CollectsRoutesAndStats(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("information_schema.columns")).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name"}).
			AddRow("users", "id").
			AddRow("users", "email").
			AddRow("users", "password_hash"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "verified", "active", "superusers"}).
			AddRow(10, 7, 9, 2))

	rep, err := Build(t.Context(), db, testMux())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if rep.Service != "authd" {
		t.Fatalf("service = %q", rep.Service)
	}
	if len(rep.Routes) != 3 {
		t.Fatalf("routes = %v", rep.Routes)
	}
	// sorted by pattern
	if rep.Routes[0].Pattern != "/api/v1/auth/login" {
		t.Fatalf("first route = %v", rep.Routes[0])
	}
	if rep.Users != (UserStats{Total: 10, Verified: 7, Active: 9, Superusers: 2}) {
		t.Fatalf("stats = %+v", rep.Users)
	}
	if len(rep.Models) != 1 || rep.Models[0].Table != "users" || len(rep.Models[0].Columns) != 3 {
		t.Fatalf("models = %+v", rep.Models)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBuild_NilSectionsSkipped(t *testing.T) {
	t.Parallel()

	rep, err := Build(t.Context(), nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rep.Routes) != 0 || rep.Users.Total != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	t.Parallel()

	rep := Report{Service: "authd", Users: UserStats{Total: 1}}
	b, err := rep.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var back Report
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Users.Total != 1 {
		t.Fatalf("round trip lost data: %+v", back)
	}
}
