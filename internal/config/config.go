// config.go
//
// Network boot configuration manager with weighted host profiles and one-shot alias overrides
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of bootmgr.
// bootmgr is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// bootmgr is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with bootmgr.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. BMGR_DB_TYPE.
const EnvPrefix = "BMGR"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `mapstructure:"port" validate:"required,numeric"`

	// Database configuration
	DBType            string `mapstructure:"db_type" validate:"required,oneof=mysql mariadb postgres postgresql sqlite sqlite-purego sqlserver mssql"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            string `mapstructure:"db_port"`
	DBDatabase        string `mapstructure:"db_database" validate:"required"`
	DBUser            string `mapstructure:"db_user"`
	DBPassword        string `mapstructure:"db_password"`
	DBConnectionLimit int    `mapstructure:"db_connection_limit" validate:"gte=1,lte=1000"`
	SQLLogLevel       string `mapstructure:"sql_log_level" validate:"oneof=silent error warn info"`

	// Rendering
	TemplatePath     string `mapstructure:"template_path" validate:"required"`
	MaxTemplateBytes int64  `mapstructure:"max_template_bytes" validate:"gte=1"`

	// Bulk operation bounds
	MaxNodeset int `mapstructure:"max_nodeset" validate:"gte=1"`
	BatchSize  int `mapstructure:"batch_size" validate:"gte=1,lte=2000"`

	// Logging
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`
}

var keys = []string{
	"port",
	"db_type",
	"db_host",
	"db_port",
	"db_database",
	"db_user",
	"db_password",
	"db_connection_limit",
	"sql_log_level",
	"template_path",
	"max_template_bytes",
	"max_nodeset",
	"batch_size",
	"log_level",
	"log_format",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults installs the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("db_type", "sqlite-purego")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "")
	v.SetDefault("db_database", "bootmgr.db")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_connection_limit", 5)
	v.SetDefault("sql_log_level", "warn")
	v.SetDefault("template_path", "/etc/bootmgr/templates/")
	v.SetDefault("max_template_bytes", 1<<20)
	v.SetDefault("max_nodeset", 100000)
	v.SetDefault("batch_size", 1000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// and BMGR_ environment variables, in increasing order of precedence.
// An empty cfgFile searches for bootmgr.yaml in . and /etc/bootmgr.
func Load(cfgFile string) (*Config, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith is Load on a caller supplied viper instance, so command flags bound
// to v take part.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bootmgr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/bootmgr")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks field constraints and the fields each db_type needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.IsSQLite() {
		if c.DBHost == "" {
			return fmt.Errorf("invalid configuration: db_host is required for %s", c.DBType)
		}
		if c.DBUser == "" {
			return fmt.Errorf("invalid configuration: db_user is required for %s", c.DBType)
		}
	}
	return nil
}

// IsSQLite reports whether the database is a local SQLite file.
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-purego"
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + c.Port
}
