package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Defaults())
	require.ErrorIs(t, err, jwtx.ErrConfig)
}

func TestNew_WiresSQLite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := Defaults()
	cfg.JWTSecret = "app-test-secret"
	cfg.DatabaseURL = filepath.Join(dir, "vaultguard.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.LogLevel = "error"

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	for _, path := range []string{"/livez", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	require.Equal(t, "vg_refresh", application.router.Cookie.Name)
	require.FileExists(t, cfg.PepperFile)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.DatabaseDriver = "mysql"
	_, err := OpenStore(context.Background(), cfg)
	require.Error(t, err)
}
