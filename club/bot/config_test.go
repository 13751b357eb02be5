package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `telegram:
  token: "123:abc"
  admin_ids: [1, 7]
  club_chat_id: -1001234567890
  chat_link: "https://t.me/+secret"
redis:
  addr: "localhost:6379"
dialog:
  page_size: 6
database:
  host: localhost
  port: "5432"
  user: club
  password: club
  name: musicclub
  sslmode: disable
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, "123:abc", cfg.Core.Telegram.Token)
	require.Equal(t, int64(-1001234567890), cfg.Core.Telegram.ClubChatID)
	require.Equal(t, "https://t.me/+secret", cfg.Core.Telegram.ChatLink)
	require.True(t, cfg.Core.Telegram.IsAdmin(7))
	require.False(t, cfg.Core.Telegram.IsAdmin(2))

	// Normalize fills defaults.
	require.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
	require.Equal(t, 6, cfg.Core.Dialog.PageSize)

	require.Equal(t, "musicclub", cfg.Database.Name)
	require.Equal(t, "5432", cfg.Database.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_LINK", "https://t.me/+override")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Equal(t, "https://t.me/+override", cfg.Core.Telegram.ChatLink)
	require.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "telegram:\n  club_chat_id: 1\n"))
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
