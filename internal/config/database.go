// internal/config/database.go
package config

import (
	"fmt"
)

// DSN renders the libpq connection string. Sessions run in UTC so that
// interview times and due dates compare the same across servers.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=placement-backend",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
