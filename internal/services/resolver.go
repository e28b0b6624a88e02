// resolver.go
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

package services

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/metrics"
	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/types"
)

// HostnameAttribute is injected into every host's attributes before profiles
// are merged, so a profile can still override it.
const HostnameAttribute = "hostname"

// SortProfiles returns profiles in display order: highest weight first, then by name.
func SortProfiles(profiles []models.Profile) []models.Profile {
	out := append([]models.Profile(nil), profiles...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ProfileName < out[j].ProfileName
	})
	return out
}

// MergeAttributes folds profile attributes from the lowest (weight, name) to the
// highest, so the heaviest profile wins and equal weights are settled by name.
func MergeAttributes(profiles []models.Profile) map[string]string {
	ordered := append([]models.Profile(nil), profiles...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Weight != ordered[j].Weight {
			return ordered[i].Weight < ordered[j].Weight
		}
		return ordered[i].ProfileName < ordered[j].ProfileName
	})

	merged := make(map[string]string)
	for _, p := range ordered {
		for k, v := range p.Attributes {
			merged[k] = v
		}
	}
	return merged
}

// ResolveAttributes returns the attributes a host sees when a template is rendered.
func ResolveAttributes(hostname string, profiles []models.Profile) map[string]string {
	attrs := map[string]string{HostnameAttribute: hostname}
	for k, v := range MergeAttributes(profiles) {
		attrs[k] = v
	}
	return attrs
}

// Resolution is the outcome of resolving a name for a host.
type Resolution struct {
	Resource   models.Resource
	Attributes map[string]string
	// Consumed is set when a one-shot override was deleted by this resolution.
	Consumed bool
}

// ResolveTarget picks the resource a host receives for name: the host's
// override, else the alias default, else the resource called name. A one-shot
// override is deleted in the same transaction, which commits before any
// rendering happens.
func ResolveTarget(ctx context.Context, db *gorm.DB, name, hostname string) (*Resolution, error) {
	var resolution Resolution

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		host, err := findHost(tx, hostname)
		if err != nil {
			return err
		}

		resource, consumed, err := resolveResource(tx, name, host.HostID)
		if err != nil {
			return err
		}

		profiles, err := profilesByHost(tx, []uint64{host.HostID}, DefaultLimits.BatchSize)
		if err != nil {
			return err
		}

		resolution = Resolution{
			Resource:   *resource,
			Attributes: ResolveAttributes(host.Hostname, profiles[host.HostID]),
			Consumed:   consumed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resolution.Consumed {
		metrics.OverridesConsumed.Inc()
		logger.L().Info("one-shot override consumed",
			zap.String("name", name),
			zap.String("host", hostname),
			zap.String("target", resolution.Resource.ResourceName))
	}
	return &resolution, nil
}

func resolveResource(tx *gorm.DB, name string, hostID uint64) (*models.Resource, bool, error) {
	var override models.Alias
	err := quiet(tx).Clauses(hints.CommentBefore("select", "bootmgr:resolve_override")).
		Where("alias_name = ? AND host_id = ?", name, hostID).
		First(&override).Error
	switch {
	case err == nil:
		resource, err := targetResource(tx, name, override.TargetID)
		if err != nil {
			return nil, false, err
		}
		if !override.Autodelete {
			return resource, false, nil
		}
		// Conditional on the row still existing: when a concurrent render got
		// there first this one falls through to the default.
		result := tx.Where("alias_id = ?", override.AliasID).Delete(&models.Alias{})
		if result.Error != nil {
			return nil, false, result.Error
		}
		if result.RowsAffected > 0 {
			return resource, true, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	var alias models.Alias
	err = quiet(tx).Clauses(hints.CommentBefore("select", "bootmgr:resolve_default")).
		Where("alias_name = ? AND host_id = ?", name, models.NoHost).
		First(&alias).Error
	if err == nil {
		resource, err := targetResource(tx, name, alias.TargetID)
		return resource, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var resource models.Resource
	err = quiet(tx).Where("resource_name = ?", name).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, types.NewNotFoundError("Resource or alias '%s' not found", name)
		}
		return nil, false, err
	}
	return &resource, false, nil
}

func targetResource(tx *gorm.DB, name string, resourceID uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := quiet(tx).First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Target resource of alias '%s' not found", name)
		}
		return nil, err
	}
	return &resource, nil
}

// RenderResource resolves name for hostname and renders the chosen template
// against the host's attributes. A consumed override stays consumed when the
// render fails.
func RenderResource(ctx context.Context, db *gorm.DB, renderer render.Renderer, name, hostname string) (string, error) {
	resolution, err := ResolveTarget(ctx, db, name, hostname)
	if err != nil {
		if isNotFound(err) {
			metrics.Renders.WithLabelValues(metrics.OutcomeNotFound).Inc()
		} else {
			metrics.Renders.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return "", err
	}

	out, err := renderer.Render(resolution.Resource.TemplateURI, resolution.Attributes)
	if err != nil {
		metrics.Renders.WithLabelValues(metrics.OutcomeError).Inc()
		logger.L().Info("render failed",
			zap.String("name", name),
			zap.String("host", hostname),
			zap.String("template", resolution.Resource.TemplateURI),
			zap.Error(err))
		return "", err
	}

	metrics.Renders.WithLabelValues(metrics.OutcomeOK).Inc()
	return out, nil
}
