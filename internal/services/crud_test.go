package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/data"
	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/types"
)

func TestProfileCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	created, err := CreateProfile(ctx, db, CreateProfileInput{Name: "base", Attributes: map[string]string{"a": "1"}})
	require.NoError(t, err)
	assert.Equal(t, ProfileView{Name: "base", Attributes: map[string]string{"a": "1"}, Weight: 0}, created)

	_, err = CreateProfile(ctx, db, CreateProfileInput{Name: "base"})
	requireStatus(t, err, http.StatusConflict)

	_, err = CreateProfile(ctx, db, CreateProfileInput{Name: "bad name"})
	requireStatus(t, err, http.StatusBadRequest)

	mustProfile(t, db, "alpha", -3, nil)

	list, err := ListProfiles(ctx, db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, map[string]string{}, list[0].Attributes)

	updated, err := UpdateProfile(ctx, db, "base", UpdateProfileInput{Weight: weight(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Weight)
	assert.Equal(t, map[string]string{"a": "1"}, updated.Attributes)

	updated, err = UpdateProfile(ctx, db, "base", UpdateProfileInput{Attributes: map[string]string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Attributes)
	assert.Equal(t, 7, updated.Weight)

	got, err := GetProfile(ctx, db, "base")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = GetProfile(ctx, db, "missing")
	requireStatus(t, err, http.StatusNotFound)
	_, err = UpdateProfile(ctx, db, "missing", UpdateProfileInput{})
	requireStatus(t, err, http.StatusNotFound)

	require.NoError(t, DeleteProfile(ctx, db, "base"))
	_, err = GetProfile(ctx, db, "base")
	requireStatus(t, err, http.StatusNotFound)
}

func TestResourceCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := CreateResource(ctx, db, CreateResourceInput{Name: "ks", TemplateURI: "http://example.com/ks"})
	ce := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Unable to parse template URI", ce.Message)

	created, err := CreateResource(ctx, db, CreateResourceInput{Name: "ks", TemplateURI: "file://ks.jinja"})
	require.NoError(t, err)
	assert.Equal(t, ResourceView{Name: "ks", TemplateURI: "file://ks.jinja"}, created)

	_, err = CreateResource(ctx, db, CreateResourceInput{Name: "ks", TemplateURI: "file://other.jinja"})
	requireStatus(t, err, http.StatusConflict)

	_, err = CreateResource(ctx, db, CreateResourceInput{Name: "ks2"})
	requireStatus(t, err, http.StatusBadRequest)

	bad := "ftp://x"
	_, err = UpdateResource(ctx, db, "ks", UpdateResourceInput{TemplateURI: &bad})
	requireStatus(t, err, http.StatusBadRequest)

	good := "file://ks_rhel7.jinja"
	updated, err := UpdateResource(ctx, db, "ks", UpdateResourceInput{TemplateURI: &good})
	require.NoError(t, err)
	assert.Equal(t, good, updated.TemplateURI)

	got, err := GetResource(ctx, db, "ks")
	require.NoError(t, err)
	assert.Equal(t, good, got.TemplateURI)

	list, err := ListResources(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []ResourceView{{Name: "ks", TemplateURI: good}}, list)

	require.NoError(t, DeleteResource(ctx, db, "ks"))
	requireStatus(t, DeleteResource(ctx, db, "ks"), http.StatusNotFound)
}

func TestCreateAlias(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mustResource(t, db, "normal", "file://normal.jinja")

	view, err := CreateAlias(ctx, db, CreateAliasInput{Name: "boot", Target: "normal"})
	require.NoError(t, err)
	assert.Equal(t, AliasView{Name: "boot", Target: "normal", Overrides: map[string]OverrideView{}}, view)

	_, err = CreateAlias(ctx, db, CreateAliasInput{Name: "boot", Target: "normal"})
	requireStatus(t, err, http.StatusConflict)

	_, err = CreateAlias(ctx, db, CreateAliasInput{Name: "other", Target: "missing"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestSetOverrides(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mustResource(t, db, "normal", "file://normal.jinja")
	mustResource(t, db, "deploy", "file://deploy.jinja")
	mustAlias(t, db, "boot", "normal")
	mustHosts(t, db, "node[1-4]")

	_, err := SetOverrides(ctx, db, DefaultLimits, "missing", SetOverrideInput{Hosts: "node1", Target: "deploy"})
	requireStatus(t, err, http.StatusNotFound)

	_, err = SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node1", Target: "missing"})
	requireStatus(t, err, http.StatusNotFound)

	_, err = SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[4-5]", Target: "deploy"})
	requireStatus(t, err, http.StatusNotFound)

	_, err = SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[1-200000]", Target: "deploy"})
	requireStatus(t, err, http.StatusRequestEntityTooLarge)

	_, err = SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[1-2]", Target: "deploy"})
	require.NoError(t, err)

	view, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node3", Target: "deploy", Autodelete: true})
	require.NoError(t, err)
	assert.Equal(t, AliasView{
		Name:   "boot",
		Target: "normal",
		Overrides: map[string]OverrideView{
			"node[1-2]": {Target: "deploy"},
			"node3":     {Target: "deploy", Autodelete: true},
		},
	}, view)

	_, err = SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[2-4]", Target: "normal"})
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, int64(4), countRows(t, db, &models.Alias{}))
}

func TestRestoreOverrides(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mustResource(t, db, "normal", "file://normal.jinja")
	mustAlias(t, db, "boot", "normal")
	mustHosts(t, db, "node[1-3]")
	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[1-2]", Target: "normal"})
	require.NoError(t, err)

	err = RestoreOverrides(ctx, db, DefaultLimits, "boot", "node[1-3]")
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, int64(3), countRows(t, db, &models.Alias{}), "nothing deleted")

	err = RestoreOverrides(ctx, db, DefaultLimits, "boot", "node[1-9]")
	requireStatus(t, err, http.StatusNotFound)

	require.NoError(t, RestoreOverrides(ctx, db, DefaultLimits, "boot", "node[1-2]"))
	view, err := GetAlias(ctx, db, DefaultLimits, "boot")
	require.NoError(t, err)
	assert.Empty(t, view.Overrides)
}

func TestDeleteAliasAndListing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mustResource(t, db, "normal", "file://normal.jinja")
	mustAlias(t, db, "boot", "normal")
	mustAlias(t, db, "another", "normal")
	mustHosts(t, db, "node1")
	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node1", Target: "normal"})
	require.NoError(t, err)

	// overrides left behind without a default entry are not listed
	var host models.Host
	require.NoError(t, db.Where("hostname = ?", "node1").First(&host).Error)
	require.NoError(t, db.Create(&models.Alias{AliasName: "orphan", HostID: host.HostID, TargetID: 1}).Error)

	list, err := ListAliases(ctx, db, DefaultLimits)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "another", list[0].Name)
	assert.Equal(t, "boot", list[1].Name)

	_, err = GetAlias(ctx, db, DefaultLimits, "orphan")
	requireStatus(t, err, http.StatusNotFound)

	require.NoError(t, DeleteAlias(ctx, db, "boot"))
	require.NoError(t, DeleteAlias(ctx, db, "boot"))
	_, err = GetAlias(ctx, db, DefaultLimits, "boot")
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, int64(2), countRows(t, db, &models.Alias{}))
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	seed, err := ParseSeed(data.Seed)
	require.NoError(t, err)

	mustResource(t, db, "kickstart", "file://custom_ks.jinja")

	result, err := Seed(ctx, db, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Resources: 3, Aliases: 1}, result)

	result, err = Seed(ctx, db, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, result)

	ks, err := GetResource(ctx, db, "kickstart")
	require.NoError(t, err)
	assert.Equal(t, "file://custom_ks.jinja", ks.TemplateURI)

	view, err := GetAlias(ctx, db, DefaultLimits, "ipxe_boot")
	require.NoError(t, err)
	assert.Equal(t, "ipxe_normal_boot", view.Target)

	_, err = ParseSeed([]byte("resources:\n  - name: 'bad name'\n"))
	assert.Error(t, err)
}

func TestSeedStopsOnAliasLookupFailure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	errLookup := errors.New("aliases unavailable")
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_alias_lookup", func(tx *gorm.DB) {
		if tx.Statement.Table == "aliases" {
			_ = tx.AddError(errLookup)
		}
	}))

	seed, err := ParseSeed(data.Seed)
	require.NoError(t, err)

	_, err = Seed(ctx, db, seed)
	require.ErrorIs(t, err, errLookup)

	var aliases int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM aliases").Scan(&aliases).Error)
	assert.Zero(t, aliases)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil, "x"))

	for _, cause := range []error{
		gorm.ErrDuplicatedKey,
		&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"},
		&pgconn.PgError{Code: "23505"},
		mssql.Error{Number: 2627},
		mssql.Error{Number: 2601},
		errors.New("UNIQUE constraint failed: hosts.hostname"),
	} {
		err := translateError(cause, "Host already exists")
		ce := requireStatus(t, err, http.StatusConflict)
		assert.Equal(t, "Host already exists", ce.Message)
		assert.Equal(t, cause, errors.Unwrap(err))
	}

	other := errors.New("connection reset")
	assert.Same(t, other, translateError(other, "x"))

	nf := types.NewNotFoundError("nope")
	assert.Same(t, nf, translateError(nf, "x"))
}

func TestChunks(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks([]int{1, 2, 3, 4, 5}, 2))
	assert.Empty(t, chunks([]int{}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, chunks([]int{1, 2, 3}, 0))
}
