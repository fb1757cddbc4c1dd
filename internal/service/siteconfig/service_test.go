package siteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{HTTPPort: 8080},
		Database: config.DatabaseConfig{Host: "localhost", Password: "supersecret"},
		Redis:    config.RedisConfig{Address: "localhost:6379", Password: "alsosecret"},
		Telegram: config.TelegramConfig{Enabled: true, BotToken: "123:token"},
		SiteConfig: config.SiteConfigConfig{
			SiteName:  "testwiki",
			ServerURL: "https://wiki.example.org",
			RestrictedKeys: []string{
				"database.password",
				"redis.password",
				"telegram.bot_token",
			},
		},
	}
}

func TestService_View_RedactsRestrictedKeys(t *testing.T) {
	svc := NewService(testConfig())

	snapshot := svc.View()

	assert.Equal(t, RedactedValue, snapshot.Sections["database"]["password"])
	assert.Equal(t, RedactedValue, snapshot.Sections["redis"]["password"])
	assert.Equal(t, RedactedValue, snapshot.Sections["telegram"]["bot_token"])

	// Остальные значения отдаются как есть
	assert.Equal(t, "localhost", snapshot.Sections["database"]["host"])
	assert.Equal(t, 8080, snapshot.Sections["server"]["http_port"])
}

func TestService_View_SiteInfo(t *testing.T) {
	svc := NewService(testConfig())

	snapshot := svc.View()
	require.NotNil(t, snapshot)

	assert.Equal(t, "testwiki", snapshot.SiteName)
	assert.Equal(t, "https://wiki.example.org", snapshot.ServerURL)
	assert.NotEmpty(t, snapshot.GoVersion)
	assert.False(t, snapshot.StartedAt.IsZero())
}
