/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string `mapstructure:"dialect"`
	Host                           string `mapstructure:"host"`
	Port                           int    `mapstructure:"port"`
	User                           string `mapstructure:"user"`
	Password                       string `mapstructure:"password"`
	DBName                         string `mapstructure:"dbname"`
	SSLMode                        string `mapstructure:"sslmode"`
	CloudSQLInstanceConnectionName string `mapstructure:"cloudsql_instance_connection_name"`
	UsePrivateIP                   bool   `mapstructure:"cloudsql_use_private_ip"`
}

// ReportConfig holds the column-matching rules for the feedback volume report.
// An empty TemporalTypes list means the dialect's default allowed set is used.
type ReportConfig struct {
	TextKeywords     []string `mapstructure:"text_keywords"`
	TemporalKeywords []string `mapstructure:"temporal_keywords"`
	TemporalTypes    []string `mapstructure:"temporal_types"`
}

var globalConfig *Config

// GetConfig returns a default configuration. Connection settings are overridden
// by flags in root.go; report rules by an optional config file or DBFR_* env vars.
func GetConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect: "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Report: ReportConfig{
			TextKeywords:     []string{"comment", "remark", "feedback"},
			TemporalKeywords: []string{"date", "time"},
		},
	}
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// LoadConfig builds a Config from defaults, an optional config file and
// DBFR_* environment variables (e.g. DBFR_REPORT_TEXT_KEYWORDS).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Every key needs a registered default: viper resolves env vars only for
	// keys it already knows about.
	defaults := GetConfig()
	v.SetDefault("database.dialect", defaults.Database.Dialect)
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.dbname", defaults.Database.DBName)
	v.SetDefault("database.sslmode", defaults.Database.SSLMode)
	v.SetDefault("database.cloudsql_instance_connection_name", defaults.Database.CloudSQLInstanceConnectionName)
	v.SetDefault("database.cloudsql_use_private_ip", defaults.Database.UsePrivateIP)
	v.SetDefault("report.text_keywords", defaults.Report.TextKeywords)
	v.SetDefault("report.temporal_keywords", defaults.Report.TemporalKeywords)
	v.SetDefault("report.temporal_types", []string{})

	v.SetEnvPrefix("DBFR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
