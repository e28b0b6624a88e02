package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/bootmgr/internal/config"
	"github.com/localnerve/bootmgr/internal/models"
)

func TestDialector(t *testing.T) {
	for dbType, name := range map[string]string{
		"mysql":         "mysql",
		"mariadb":       "mysql",
		"postgres":      "postgres",
		"postgresql":    "postgres",
		"sqlite":        "sqlite",
		"sqlite-purego": "sqlite",
		"sqlserver":     "sqlserver",
		"mssql":         "sqlserver",
	} {
		d, err := Dialector(&config.Config{DBType: dbType, DBHost: "h", DBUser: "u", DBDatabase: "d"})
		require.NoError(t, err, dbType)
		assert.Equal(t, name, d.Name(), dbType)
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestConnectAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-purego",
		DBDatabase:        filepath.Join(t.TempDir(), "bootmgr.db"),
		DBConnectionLimit: 5,
		SQLLogLevel:       "silent",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Alias{}, "idx_alias_name_host"))

	p := models.Profile{ProfileName: "base", Attributes: models.Attributes{"console": "ttyS0"}}
	require.NoError(t, db.Create(&p).Error)

	var got models.Profile
	require.NoError(t, db.First(&got, p.ProfileID).Error)
	assert.Equal(t, models.Attributes{"console": "ttyS0"}, got.Attributes)
	assert.Equal(t, 0, got.Weight)

	require.NoError(t, db.Create(&models.Alias{AliasName: "ipxe_boot", TargetID: 1}).Error)
	err = db.Create(&models.Alias{AliasName: "ipxe_boot", TargetID: 2}).Error
	assert.Error(t, err, "default alias rows are unique per name")

	err = db.Create(&models.Resource{ResourceName: "bad", TemplateURI: "http://x"}).Error
	assert.Error(t, err)
}
