package config

import (
	"testing"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "farmatrack_app",
		Password: "devpassword",
		Database: "farmatrack_inventory",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=farmatrack_app password=devpassword dbname=farmatrack_inventory sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %v, want %v", got, want)
	}
}

func TestDatabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      DatabaseConfig
		environment string
		wantErr     bool
	}{
		{
			name:        "development allows localhost defaults",
			config:      DatabaseConfig{Host: "localhost"},
			environment: EnvDevelopment,
			wantErr:     false,
		},
		{
			name:        "production rejects localhost",
			config:      DatabaseConfig{Host: "localhost"},
			environment: EnvProduction,
			wantErr:     true,
		},
		{
			name:        "production accepts explicit host",
			config:      DatabaseConfig{Host: "prod-db.internal"},
			environment: EnvProduction,
			wantErr:     false,
		},
		{
			name:        "staging requires a host",
			config:      DatabaseConfig{Host: ""},
			environment: EnvStaging,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(tt.environment)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("inventory-service")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("Server.Port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Server.Environment != EnvDevelopment {
		t.Errorf("Server.Environment = %s, want %s", cfg.Server.Environment, EnvDevelopment)
	}
	if cfg.Database.Database != "farmatrack_inventory" {
		t.Errorf("Database.Database = %s, want farmatrack_inventory", cfg.Database.Database)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s, want localhost:6379", cfg.Redis.Addr)
	}
}
