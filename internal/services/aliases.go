// aliases.go
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
	"sort"

	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/nodeset"
	"github.com/localnerve/bootmgr/internal/types"
)

// OverrideView is the target of a group of per-host overrides.
type OverrideView struct {
	Target     string `json:"target"`
	Autodelete bool   `json:"autodelete"`
}

// AliasView is the merged representation of an alias: overrides sharing a
// target and autodelete flag are keyed by one folded host pattern.
type AliasView struct {
	Name      string                  `json:"name"`
	Target    string                  `json:"target"`
	Overrides map[string]OverrideView `json:"overrides"`
}

// CreateAliasInput is the body of POST /aliases.
type CreateAliasInput struct {
	Name   string `json:"name" validate:"required,identifier"`
	Target string `json:"target" validate:"required,identifier"`
}

// SetOverrideInput is the body of POST /aliases/{name}.
type SetOverrideInput struct {
	Hosts      string `json:"hosts" validate:"required"`
	Target     string `json:"target" validate:"required,identifier"`
	Autodelete bool   `json:"autodelete"`
}

// CreateAlias adds the default entry of an alias.
func CreateAlias(ctx context.Context, db *gorm.DB, in CreateAliasInput) (AliasView, error) {
	if err := types.Validate(&in); err != nil {
		return AliasView{}, err
	}

	var view AliasView
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Alias{}).Where("alias_name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.NewConflictError("Alias already exists", nil)
		}

		target, err := findResource(tx, in.Target)
		if err != nil {
			return err
		}

		if err := tx.Create(&models.Alias{AliasName: in.Name, TargetID: target.ResourceID}).Error; err != nil {
			return err
		}

		view, err = getAlias(tx, in.Name, DefaultLimits)
		return err
	})
	if err != nil {
		return AliasView{}, translateError(err, "Alias already exists")
	}
	return view, nil
}

// SetOverrides points every host of in.Hosts at in.Target for alias name.
func SetOverrides(ctx context.Context, db *gorm.DB, limits Limits, name string, in SetOverrideInput) (AliasView, error) {
	if err := types.Validate(&in); err != nil {
		return AliasView{}, err
	}
	hostnames, err := expandPattern(in.Hosts, limits)
	if err != nil {
		return AliasView{}, err
	}

	var view AliasView
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findDefaultAlias(tx, name); err != nil {
			return err
		}

		hosts, err := lookupHosts(tx, hostnames, limits.batch())
		if err != nil {
			return err
		}

		existing, err := countOverrides(tx, name, hostIDs(hosts), limits.batch())
		if err != nil {
			return err
		}
		if existing > 0 {
			return types.NewConflictError("Alias or override already exists", nil)
		}

		target, err := findResource(tx, in.Target)
		if err != nil {
			return err
		}

		if len(hosts) != len(hostnames) {
			return types.NewNotFoundError("Host not found")
		}

		overrides := make([]models.Alias, len(hosts))
		for i, h := range hosts {
			overrides[i] = models.Alias{
				AliasName:  name,
				HostID:     h.HostID,
				TargetID:   target.ResourceID,
				Autodelete: in.Autodelete,
			}
		}
		if err := tx.CreateInBatches(&overrides, rowsPerBatch(tx, limits.batch(), 6)).Error; err != nil {
			return err
		}

		view, err = getAlias(tx, name, limits)
		return err
	})
	if err != nil {
		return AliasView{}, translateError(err, "Alias or override already exists")
	}
	return view, nil
}

// ListAliases returns the merged view of every alias that has a default entry.
func ListAliases(ctx context.Context, db *gorm.DB, limits Limits) ([]AliasView, error) {
	var rows []models.Alias
	if err := db.WithContext(ctx).Order("alias_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return aliasViews(db.WithContext(ctx), rows, limits)
}

// GetAlias returns the merged view of one alias.
func GetAlias(ctx context.Context, db *gorm.DB, limits Limits, name string) (AliasView, error) {
	return getAlias(db.WithContext(ctx), name, limits)
}

// DeleteAlias removes the default entry and every override of an alias.
// Deleting an absent alias is not an error.
func DeleteAlias(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("alias_name = ?", name).Delete(&models.Alias{}).Error
	})
}

// RestoreOverrides deletes the overrides of alias name for every host of the
// pattern. Nothing is deleted unless each host has an override.
func RestoreOverrides(ctx context.Context, db *gorm.DB, limits Limits, name, pattern string) error {
	hostnames, err := expandPattern(pattern, limits)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hosts, err := lookupHosts(tx, hostnames, limits.batch())
		if err != nil {
			return err
		}
		ids := hostIDs(hosts)

		count, err := countOverrides(tx, name, ids, limits.batch())
		if err != nil {
			return err
		}
		if count != int64(len(hostnames)) {
			return types.NewNotFoundError("Alias or override not found")
		}

		for _, chunk := range chunks(ids, limits.batch()) {
			if err := tx.Where("alias_name = ? AND host_id IN ?", name, chunk).Delete(&models.Alias{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func findDefaultAlias(tx *gorm.DB, name string) (*models.Alias, error) {
	var rows []models.Alias
	if err := tx.Where("alias_name = ? AND host_id = ?", name, models.NoHost).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, types.NewNotFoundError("Alias '%s' not found", name)
	}
	return &rows[0], nil
}

func countOverrides(tx *gorm.DB, name string, ids []uint64, batch int) (int64, error) {
	var total int64
	for _, chunk := range chunks(ids, batch) {
		var n int64
		if err := tx.Model(&models.Alias{}).
			Where("alias_name = ? AND host_id IN ?", name, chunk).
			Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func getAlias(tx *gorm.DB, name string, limits Limits) (AliasView, error) {
	var rows []models.Alias
	if err := tx.Where("alias_name = ?", name).Find(&rows).Error; err != nil {
		return AliasView{}, err
	}
	views, err := aliasViews(tx, rows, limits)
	if err != nil {
		return AliasView{}, err
	}
	if len(views) == 0 {
		return AliasView{}, types.NewNotFoundError("Alias '%s' not found", name)
	}
	return views[0], nil
}

// aliasViews merges alias rows into views, skipping aliases without a default
// entry. Views are ordered by name.
func aliasViews(tx *gorm.DB, rows []models.Alias, limits Limits) ([]AliasView, error) {
	var resourceIDs, overrideHostIDs []uint64
	seenResource := make(map[uint64]bool)
	for _, a := range rows {
		if !seenResource[a.TargetID] {
			seenResource[a.TargetID] = true
			resourceIDs = append(resourceIDs, a.TargetID)
		}
		if !a.IsDefault() {
			overrideHostIDs = append(overrideHostIDs, a.HostID)
		}
	}

	resourceNames := make(map[uint64]string, len(resourceIDs))
	for _, chunk := range chunks(resourceIDs, limits.batch()) {
		var part []models.Resource
		if err := tx.Where("resource_id IN ?", chunk).Find(&part).Error; err != nil {
			return nil, err
		}
		for _, r := range part {
			resourceNames[r.ResourceID] = r.ResourceName
		}
	}

	hostnames := make(map[uint64]string, len(overrideHostIDs))
	for _, chunk := range chunks(overrideHostIDs, limits.batch()) {
		var part []models.Host
		if err := tx.Where("host_id IN ?", chunk).Find(&part).Error; err != nil {
			return nil, err
		}
		for _, h := range part {
			hostnames[h.HostID] = h.Hostname
		}
	}

	type entry struct {
		hasDefault bool
		target     string
		groups     map[OverrideView][]string
	}
	entries := make(map[string]*entry)
	for _, a := range rows {
		e, ok := entries[a.AliasName]
		if !ok {
			e = &entry{groups: make(map[OverrideView][]string)}
			entries[a.AliasName] = e
		}
		if a.IsDefault() {
			e.hasDefault = true
			e.target = resourceNames[a.TargetID]
			continue
		}
		hostname, ok := hostnames[a.HostID]
		if !ok {
			continue
		}
		key := OverrideView{Target: resourceNames[a.TargetID], Autodelete: a.Autodelete}
		e.groups[key] = append(e.groups[key], hostname)
	}

	views := make([]AliasView, 0, len(entries))
	for name, e := range entries {
		if !e.hasDefault {
			continue
		}
		overrides := make(map[string]OverrideView, len(e.groups))
		for status, hosts := range e.groups {
			overrides[nodeset.Fold(hosts)] = status
		}
		views = append(views, AliasView{Name: name, Target: e.target, Overrides: overrides})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}
