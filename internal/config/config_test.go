package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("FOOD_TEST_STR", "")
	t.Setenv("FOOD_TEST_INT", "nope")

	assert.Equal(t, "fallback", EnvDefault("FOOD_TEST_STR", "fallback"))
	assert.Equal(t, 9, EnvIntDefault("FOOD_TEST_INT", 9))

	t.Setenv("FOOD_TEST_INT", "8081")
	assert.Equal(t, 8081, EnvIntDefault("FOOD_TEST_INT", 9))
}

func TestLoad(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ES_INDEX", "")

	cfg := Load()
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, []byte("access"), cfg.JWTAccessSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "menu", cfg.ESIndex)
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServiceName:      "food-order",
		ServerPort:       8080,
		SQLitePath:       ":memory:",
		JWTAccessSecret:  []byte("a"),
		JWTRefreshSecret: []byte("r"),
	}
	assert.NoError(t, valid.Validate())

	broken := valid
	broken.ServerPort = 0
	broken.JWTRefreshSecret = nil
	broken.SQLitePath = ""
	err := broken.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "SERVER_PORT 0 out of range")
		assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET is required")
		assert.Contains(t, err.Error(), "DATABASE_URL or SQLITE_PATH")
		assert.NotContains(t, err.Error(), "JWT_SECRET is required")
	}
}
