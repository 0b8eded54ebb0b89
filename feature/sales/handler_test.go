package sales_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"region-sync/core/record"
	"region-sync/core/region"
	"region-sync/core/stats"
	"region-sync/feature/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T) (*fiber.App, map[string]*region.MemoryStore) {
	t.Helper()

	stores := make(map[string]*region.MemoryStore)
	var replicas []region.Replica
	for _, label := range region.Labels {
		s := region.NewMemoryStore(label)
		stores[label] = s
		replicas = append(replicas, region.Replica{Label: label, Store: s})
	}

	feature := sales.NewFeature(replicas, stats.NewCollector(region.Labels), 0, zap.NewNop())
	assert.Equal(t, "sales", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, stores
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandler_CreateFindDelete(t *testing.T) {
	app, _ := setupApp(t)

	code, body := do(t, app, "POST", "/regions/stl/sales", `{"business_date":"2024-05-01","amount":150.5,"product":"rice"}`)
	require.Equal(t, fiber.StatusCreated, code, string(body))

	var created record.Record
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, region.SaintLouis, created.Region)
	assert.Equal(t, "150.5", created.Amount.String())

	code, body = do(t, app, "GET", "/sales/"+created.ID.String(), "")
	require.Equal(t, fiber.StatusOK, code)
	var found record.Record
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Equal(t, created.ID, found.ID)

	code, body = do(t, app, "PUT", "/regions/stl/sales/"+created.ID.String(), `{"amount":"175","product":"rice"}`)
	require.Equal(t, fiber.StatusOK, code, string(body))

	code, _ = do(t, app, "DELETE", "/regions/saint-louis/sales/"+created.ID.String(), "")
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = do(t, app, "GET", "/sales/"+created.ID.String(), "")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = do(t, app, "GET", "/regions/stl/sales?deleted=true", "")
	require.Equal(t, fiber.StatusOK, code)
	var rows []record.Record
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Deleted)
}

func TestHandler_ListAllAndSummary(t *testing.T) {
	app, stores := setupApp(t)
	now := time.Now().UTC()
	stores[region.Dakar].Put(record.Record{ID: uuid.New(), Region: region.Dakar, UpdatedAt: now})
	stores[region.Thies].Fail(errors.New("down"))

	code, body := do(t, app, "GET", "/sales", "")
	require.Equal(t, fiber.StatusOK, code)
	var listing sales.Listing
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Len(t, listing.Records, 1)
	assert.Contains(t, listing.Unreachable, region.Thies)

	code, body = do(t, app, "GET", "/sales/summary", "")
	require.Equal(t, fiber.StatusOK, code)
	var summary struct {
		Regions []sales.RegionSummary `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Len(t, summary.Regions, 3)
	assert.Equal(t, 1, summary.Regions[0].Active)
}

func TestHandler_Errors(t *testing.T) {
	app, stores := setupApp(t)
	stores[region.Dakar].Fail(errors.New("down"))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"Unknown region", "POST", "/regions/kaolack/sales", `{"amount":1,"product":"x"}`, fiber.StatusBadRequest},
		{"Invalid body", "POST", "/regions/thies/sales", `{"amount":`, fiber.StatusBadRequest},
		{"Missing product", "POST", "/regions/thies/sales", `{"amount":1}`, fiber.StatusBadRequest},
		{"Invalid id", "GET", "/sales/not-a-uuid", "", fiber.StatusBadRequest},
		{"Unknown id", "GET", "/sales/" + uuid.NewString(), "", fiber.StatusNotFound},
		{"Unknown id in region", "DELETE", "/regions/thies/sales/" + uuid.NewString(), "", fiber.StatusNotFound},
		{"Region down", "GET", "/regions/dakar/sales", "", fiber.StatusServiceUnavailable},
		{"Purge with region down", "DELETE", "/sales/" + uuid.NewString(), "", fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code, string(body))
		})
	}
}

func TestHandler_Purge(t *testing.T) {
	app, stores := setupApp(t)
	id := uuid.New()
	for _, label := range region.Labels {
		stores[label].Put(record.Record{ID: id, Region: label, UpdatedAt: time.Now()})
	}

	code, _ := do(t, app, "DELETE", "/sales/"+id.String(), "")
	assert.Equal(t, fiber.StatusNoContent, code)

	for _, s := range stores {
		rows, err := s.ListAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
}
