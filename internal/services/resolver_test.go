package services

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/types"
)

func profile(name string, w int, attrs map[string]string) models.Profile {
	return models.Profile{ProfileName: name, Weight: w, Attributes: attrs}
}

func TestMergeAttributesEqualWeightsSettledByName(t *testing.T) {
	a := profile("A", 0, map[string]string{"a": "1", "b": "1"})
	b := profile("B", 0, map[string]string{"b": "2"})

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, MergeAttributes([]models.Profile{a, b}))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, MergeAttributes([]models.Profile{b, a}))
}

func TestMergeAttributesHeaviestWins(t *testing.T) {
	low := profile("zz-low", -5, map[string]string{"console": "tty0", "only_low": "x"})
	base := profile("base", 0, map[string]string{"console": "ttyS0"})
	high := profile("aa-high", 10, map[string]string{"console": "ttyS1"})

	got := MergeAttributes([]models.Profile{low, base, high})
	assert.Equal(t, map[string]string{"console": "ttyS1", "only_low": "x"}, got)
}

func TestMergeAttributesIndependentOfAssignmentOrder(t *testing.T) {
	profiles := []models.Profile{
		profile("p1", 3, map[string]string{"k": "p1", "a": "p1"}),
		profile("p2", 3, map[string]string{"k": "p2"}),
		profile("p3", 1, map[string]string{"k": "p3", "b": "p3"}),
		profile("p4", -2, map[string]string{"a": "p4", "c": "p4"}),
		profile("p5", 0, nil),
	}
	want := MergeAttributes(profiles)
	assert.Equal(t, map[string]string{"k": "p2", "a": "p1", "b": "p3", "c": "p4"}, want)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.Profile(nil), profiles...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, MergeAttributes(shuffled))
	}
}

func TestSortProfilesDisplayOrder(t *testing.T) {
	sorted := SortProfiles([]models.Profile{
		profile("b", 0, nil),
		profile("c", 5, nil),
		profile("a", 0, nil),
		profile("d", -1, nil),
	})
	names := make([]string, len(sorted))
	for i, p := range sorted {
		names[i] = p.ProfileName
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, names)
}

func TestResolveAttributesHostnameCanBeOverridden(t *testing.T) {
	attrs := ResolveAttributes("node1", []models.Profile{profile("base", 0, map[string]string{"x": "1"})})
	assert.Equal(t, map[string]string{"hostname": "node1", "x": "1"}, attrs)

	attrs = ResolveAttributes("node1", []models.Profile{profile("rename", 0, map[string]string{"hostname": "custom"})})
	assert.Equal(t, "custom", attrs["hostname"])
}

func setupBootAlias(t *testing.T) (context.Context, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	mustResource(t, db, "normal", "file://normal.jinja")
	mustResource(t, db, "deploy", "file://deploy.jinja")
	mustAlias(t, db, "boot", "normal")
	mustHosts(t, db, "node[1-3]")
	return context.Background(), db
}

func TestOneShotOverrideConsumedOnce(t *testing.T) {
	ctx, db := setupBootAlias(t)

	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node[1-3]", Target: "deploy", Autodelete: true})
	require.NoError(t, err)

	out, err := RenderResource(ctx, db, stubRenderer{}, "boot", "node1")
	require.NoError(t, err)
	assert.Equal(t, "file://deploy.jinja node1", out)

	out, err = RenderResource(ctx, db, stubRenderer{}, "boot", "node1")
	require.NoError(t, err)
	assert.Equal(t, "file://normal.jinja node1", out)

	out, err = RenderResource(ctx, db, stubRenderer{}, "boot", "node2")
	require.NoError(t, err)
	assert.Equal(t, "file://deploy.jinja node2", out)

	view, err := GetAlias(ctx, db, DefaultLimits, "boot")
	require.NoError(t, err)
	assert.Equal(t, map[string]OverrideView{"node3": {Target: "deploy", Autodelete: true}}, view.Overrides)
}

func TestPersistentOverrideIsIdempotent(t *testing.T) {
	ctx, db := setupBootAlias(t)

	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node2", Target: "deploy"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := ResolveTarget(ctx, db, "boot", "node2")
		require.NoError(t, err)
		assert.Equal(t, "deploy", res.Resource.ResourceName)
		assert.False(t, res.Consumed)
	}

	res, err := ResolveTarget(ctx, db, "boot", "node1")
	require.NoError(t, err)
	assert.Equal(t, "normal", res.Resource.ResourceName)
}

func TestConcurrentRendersConsumeOverrideExactlyOnce(t *testing.T) {
	ctx, db := setupBootAlias(t)

	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node1", Target: "deploy", Autodelete: true})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan *Resolution, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ResolveTarget(ctx, db, "boot", "node1")
			if assert.NoError(t, err) {
				results <- res
			}
		}()
	}
	wg.Wait()
	close(results)

	consumed := 0
	for res := range results {
		if res.Consumed {
			consumed++
			assert.Equal(t, "deploy", res.Resource.ResourceName)
		} else {
			assert.Equal(t, "normal", res.Resource.ResourceName)
		}
	}
	assert.Equal(t, 1, consumed)
}

func TestConsumptionSurvivesRenderFailure(t *testing.T) {
	ctx, db := setupBootAlias(t)

	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node1", Target: "deploy", Autodelete: true})
	require.NoError(t, err)

	renderer := render.NewFileRenderer(t.TempDir(), 0)
	_, err = RenderResource(ctx, db, renderer, "boot", "node1")
	ce := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Template not found on server: deploy.jinja", ce.Message)

	res, err := ResolveTarget(ctx, db, "boot", "node1")
	require.NoError(t, err)
	assert.Equal(t, "normal", res.Resource.ResourceName)
}

func TestRenderWithTemplates(t *testing.T) {
	ctx, db := setupBootAlias(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "normal.jinja"), []byte("boot {{ hostname }} from {{ disk }}"), 0o644))
	mustProfile(t, db, "disk", 0, map[string]string{"disk": "sda"})
	_, err := UpdateHosts(ctx, db, DefaultLimits, "node1", UpdateHostsInput{Profiles: []string{"disk"}})
	require.NoError(t, err)

	out, err := RenderResource(ctx, db, render.NewFileRenderer(dir, 0), "boot", "node1")
	require.NoError(t, err)
	assert.Equal(t, "boot node1 from sda", out)
}

func TestResolveTargetNotFound(t *testing.T) {
	ctx, db := setupBootAlias(t)

	_, err := SetOverrides(ctx, db, DefaultLimits, "boot", SetOverrideInput{Hosts: "node1", Target: "deploy", Autodelete: true})
	require.NoError(t, err)

	// unknown host consumes nothing
	_, err = RenderResource(ctx, db, stubRenderer{}, "boot", "node9")
	requireStatus(t, err, http.StatusNotFound)

	// unknown name
	_, err = RenderResource(ctx, db, stubRenderer{}, "nothing", "node1")
	ce := requireStatus(t, err, http.StatusNotFound)
	assert.Contains(t, ce.Message, "Resource or alias")

	// direct resource
	out, err := RenderResource(ctx, db, stubRenderer{}, "deploy", "node2")
	require.NoError(t, err)
	assert.Equal(t, "file://deploy.jinja node2", out)

	// override target deleted: dangling, not consumed
	require.NoError(t, DeleteResource(ctx, db, "deploy"))
	_, err = RenderResource(ctx, db, stubRenderer{}, "boot", "node1")
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, int64(2), countRows(t, db, &models.Alias{}))

	// default target deleted
	require.NoError(t, DeleteResource(ctx, db, "normal"))
	_, err = RenderResource(ctx, db, stubRenderer{}, "boot", "node2")
	requireStatus(t, err, http.StatusNotFound)
}

func TestRenderErrorPassesThrough(t *testing.T) {
	ctx, db := setupBootAlias(t)

	renderErr := types.NewRenderError("Error while rendering template: boom", errors.New("boom"))
	_, err := RenderResource(ctx, db, stubRenderer{err: renderErr}, "boot", "node1")
	ce := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, types.ErrTypeRender, ce.Type)
}
