package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawaii-climate/internal/config"
	"hawaii-climate/internal/dataset"
)

func buildDataset(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, dataset.Migrate(ctx, db.DB))
	_, err = dataset.ImportStations(ctx, db, strings.NewReader("station,name\nUSC00519281,\"WAIHEE 837.5, HI US\"\nUSC00519397,\"WAIKIKI 717.2, HI US\"\n"))
	require.NoError(t, err)
	_, err = dataset.ImportMeasurements(ctx, db, strings.NewReader("station,date,prcp,tobs\nUSC00519281,2017-08-22,0.5,76\nUSC00519281,2017-08-23,,80\nUSC00519397,2017-08-23,0.0,81\n"))
	require.NoError(t, err)
	return path
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T, path string) config.Config {
	return config.Config{
		AppEnv:            "dev",
		HTTPAddr:          freeAddr(t),
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   5 * time.Second,
		Driver:            "sqlite3",
		Path:              path,
		MaxOpenConns:      2,
		MaxIdleConns:      2,
	}
}

func TestRun_servesDatasetAndShutsDown(t *testing.T) {
	cfg := testConfig(t, buildDataset(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	base := "http://" + cfg.HTTPAddr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(base + "/api/v1.0/stations")
	require.NoError(t, err)
	var stations []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stations))
	_ = resp.Body.Close()
	assert.Equal(t, []string{"USC00519281", "WAIHEE 837.5, HI US", "USC00519397", "WAIKIKI 717.2, HI US"}, stations)

	resp, err = http.Get(base + "/api/v1.0/tobs")
	require.NoError(t, err)
	var tobs []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tobs))
	_ = resp.Body.Close()
	assert.Equal(t, []string{"2017-08-22", "76.0", "2017-08-23", "80.0"}, tobs)

	for _, path := range []string{
		"/api/v1.0/precipitation",
		"/api/v1.0/stations",
		"/api/v1.0/tobs",
		"/api/v1.0/2017-08-22",
		"/api/v1.0/2017-08-22/2017-08-23",
	} {
		first := getBody(t, base+path)
		second := getBody(t, base+path)
		assert.True(t, bytes.Equal(first, second), "%s not byte-identical across requests:\n%s\n%s", path, first, second)
	}
	assert.Equal(t,
		`[{"date":"2017-08-22","prcp":0.5},{"date":"2017-08-23","prcp":null},{"date":"2017-08-23","prcp":0}]`,
		strings.TrimSpace(string(getBody(t, base+"/api/v1.0/precipitation"))))

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "Run() = %v; want context.Canceled", err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func getBody(t *testing.T, url string) []byte {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, url)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func TestRun_missingDatasetIsFatal(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.sqlite"))

	err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestRun_datasetWithoutTablesIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sqlite")
	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE station (station TEXT, name TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = Run(context.Background(), testConfig(t, path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "measurement")
}
