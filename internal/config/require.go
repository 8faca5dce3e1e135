package config

import (
	"fmt"
	"strings"
)

// Validate reports every required setting that is missing or out of range.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ServiceName) == "" {
		problems = append(problems, "SERVICE_NAME is empty")
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		problems = append(problems, fmt.Sprintf("SERVER_PORT %d out of range", c.ServerPort))
	}
	if len(c.JWTAccessSecret) == 0 {
		problems = append(problems, "JWT_SECRET is required")
	}
	if len(c.JWTRefreshSecret) == 0 {
		problems = append(problems, "JWT_REFRESH_SECRET is required")
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		problems = append(problems, "one of DATABASE_URL or SQLITE_PATH is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
