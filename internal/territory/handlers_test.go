package territory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-territorio/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestTerritoryHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	polygon, _ := json.Marshal([]geo.Coordinate{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.01}, {Lat: 0.01, Lng: 0.01}})
	mock.ExpectQuery(`SELECT id, owner_id, owner_name`).
		WithArgs("terr-1").
		WillReturnRows(pgxmock.NewRows(territoryColumns).
			AddRow("terr-1", "player-1", "Ana", "", polygon, 50, 0, 2.0, int64(1700000000000)))

	app := fiber.New()
	RegisterRoutes(app.Group("/territories"), NewService(mock))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/territories/terr-1", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get territory: %v, status %d", err, resp.StatusCode)
	}

	var tr Territory
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.ID != "terr-1" {
		t.Fatalf("unexpected territory: %+v", tr)
	}
}

func TestTerritoryHandlersSearch(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, owner_id, owner_name`).
		WithArgs(106.8, -6.2, 5000.0).
		WillReturnRows(pgxmock.NewRows(territoryColumns))

	app := fiber.New()
	RegisterRoutes(app.Group("/territories"), NewService(mock))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/territories/?lat=-6.2&lng=106.8", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("search: %v, status %d", err, resp.StatusCode)
	}
}

func TestTerritoryHandlersSearchValidation(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/territories"), NewService(nil))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/territories/?lat=abc&lng=1", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for bad lat")
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/territories/?lat=1&lng=1&radius_km=-2", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for bad radius")
	}
}

func TestTerritoryHandlersNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, owner_id, owner_name`).
		WithArgs("missing").
		WillReturnError(errNotFound)

	app := fiber.New()
	RegisterRoutes(app.Group("/territories"), NewService(mock))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/territories/missing", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

var errNotFound = fiber.ErrNotFound
