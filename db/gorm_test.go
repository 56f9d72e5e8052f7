package db

import (
	"testing"

	"motionfm/config"

	gomysql "github.com/go-sql-driver/mysql"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBUser:     "pi",
		DBPassword: "s3cr@t",
		DBHost:     "10.0.0.5",
		DBPort:     "3307",
		DBName:     "motionfm",
	}

	parsed, err := gomysql.ParseDSN(DSN(cfg))
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if parsed.User != "pi" || parsed.Passwd != "s3cr@t" {
		t.Errorf("credentials = %q/%q", parsed.User, parsed.Passwd)
	}
	if parsed.Net != "tcp" || parsed.Addr != "10.0.0.5:3307" {
		t.Errorf("address = %s(%s)", parsed.Net, parsed.Addr)
	}
	if parsed.DBName != "motionfm" || !parsed.ParseTime {
		t.Errorf("database = %q parseTime = %v", parsed.DBName, parsed.ParseTime)
	}
}
