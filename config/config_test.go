package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"auth": {"secret": "s3cret"},
		"db": {"host": "db.internal", "port": 5433},
		"payment": {"receiptTimeout": "2m"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "db.internal", cfg.DB.Host)
	require.Equal(t, uint16(5433), cfg.DB.Port)
	require.Equal(t, 2*time.Minute, cfg.Payment.ReceiptTimeout)
	require.Equal(t, "quickpay", cfg.DB.DBName)
	require.Equal(t, "MON", cfg.Payment.NativeSymbol)
	require.Equal(t, []string{"ETH", "MON"}, cfg.Payment.SupportedSymbols)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"auth": {"secret": "from-file"}, "log": {"level": "debug"}}`)

	t.Setenv("QUICKPAY_AUTH_SECRET", "from-env")
	t.Setenv("QUICKPAY_PROC_CONFIRMATIONS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, uint64(12), cfg.Proc.Confirmations)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonPositivePause(t *testing.T) {
	path := writeConfig(t, `{"auth": {"secret": "s3cret"}}`)

	t.Setenv("QUICKPAY_PROC_SESSIONPRUNEPAUSE", "0s")

	_, err := Load(path)
	require.EqualError(t, err, "proc.sessionPrunePause must be positive")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
