package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/database"
	"github.com/localnerve/bootmgr/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(puresqlite.Open(filepath.Join(t.TempDir(), "bootmgr.db")), "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func requireStatus(t *testing.T, err error, code int) *types.CustomError {
	t.Helper()
	require.Error(t, err)
	var ce *types.CustomError
	require.True(t, errors.As(err, &ce), "expected CustomError, got %T: %v", err, err)
	require.Equal(t, code, ce.Code, ce.Message)
	return ce
}

func weight(n int) *types.FlexInt {
	w := types.FlexInt(n)
	return &w
}

func mustProfile(t *testing.T, db *gorm.DB, name string, w int, attrs map[string]string) {
	t.Helper()
	_, err := CreateProfile(context.Background(), db, CreateProfileInput{Name: name, Weight: weight(w), Attributes: attrs})
	require.NoError(t, err)
}

func mustHosts(t *testing.T, db *gorm.DB, pattern string, profiles ...string) {
	t.Helper()
	_, err := CreateHosts(context.Background(), db, DefaultLimits, CreateHostsInput{Name: pattern, Profiles: profiles})
	require.NoError(t, err)
}

func mustResource(t *testing.T, db *gorm.DB, name, uri string) {
	t.Helper()
	_, err := CreateResource(context.Background(), db, CreateResourceInput{Name: name, TemplateURI: uri})
	require.NoError(t, err)
}

func mustAlias(t *testing.T, db *gorm.DB, name, target string) {
	t.Helper()
	_, err := CreateAlias(context.Background(), db, CreateAliasInput{Name: name, Target: target})
	require.NoError(t, err)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// stubRenderer echoes the template URI and the hostname attribute.
type stubRenderer struct {
	err error
}

func (s stubRenderer) Render(uri string, attrs map[string]string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return uri + " " + attrs["hostname"], nil
}
