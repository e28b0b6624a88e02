// hosts.go
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
	"strings"

	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/metrics"
	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/nodeset"
	"github.com/localnerve/bootmgr/internal/types"
)

// HostGroup is a set of hosts sharing one profile set, folded into a pattern.
type HostGroup struct {
	Name       string            `json:"name"`
	Profiles   []string          `json:"profiles"`
	Attributes map[string]string `json:"attributes"`
}

// CreateHostsInput is the body of POST /hosts.
type CreateHostsInput struct {
	Name     string                 `json:"name" validate:"required"`
	Profiles types.FlexList[string] `json:"profiles"`
}

// UpdateHostsInput is the body of PATCH /hosts/{pattern}. A nil Profiles leaves
// the profile sets unchanged.
type UpdateHostsInput struct {
	Profiles types.FlexList[string] `json:"profiles"`
}

// CreateHosts adds every host of the pattern in one transaction. The pattern
// size is checked before any row is built and a single duplicate aborts all.
func CreateHosts(ctx context.Context, db *gorm.DB, limits Limits, in CreateHostsInput) ([]HostGroup, error) {
	if err := types.Validate(&in); err != nil {
		return nil, err
	}
	hostnames, err := expandPattern(in.Name, limits)
	if err != nil {
		return nil, err
	}

	var groups []HostGroup
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profiles, err := findProfiles(tx, in.Profiles.Slice())
		if err != nil {
			return err
		}

		hosts := make([]models.Host, len(hostnames))
		for i, name := range hostnames {
			hosts[i] = models.Host{Hostname: name}
		}
		if err := tx.CreateInBatches(&hosts, rowsPerBatch(tx, limits.batch(), 3)).Error; err != nil {
			return err
		}

		if err := linkProfiles(tx, hosts, profiles, limits); err != nil {
			return err
		}

		groups, err = groupHosts(tx, hosts, limits)
		return err
	})
	if err != nil {
		return nil, translateError(err, "Host already exists")
	}

	metrics.HostsCreated.Add(float64(len(hostnames)))
	return groups, nil
}

// ListHosts returns every host grouped by profile set.
func ListHosts(ctx context.Context, db *gorm.DB, limits Limits) ([]HostGroup, error) {
	var hosts []models.Host
	if err := db.WithContext(ctx).Find(&hosts).Error; err != nil {
		return nil, err
	}
	return groupHosts(db.WithContext(ctx), hosts, limits)
}

// GetHosts returns the existing hosts of a pattern grouped by profile set.
// Hosts of the pattern that do not exist are ignored.
func GetHosts(ctx context.Context, db *gorm.DB, limits Limits, pattern string) ([]HostGroup, error) {
	hostnames, err := expandPattern(pattern, limits)
	if err != nil {
		return nil, err
	}
	tx := db.WithContext(ctx)
	hosts, err := lookupHosts(tx, hostnames, limits.batch())
	if err != nil {
		return nil, err
	}
	return groupHosts(tx, hosts, limits)
}

// UpdateHosts replaces the profile set of every host of the pattern.
func UpdateHosts(ctx context.Context, db *gorm.DB, limits Limits, pattern string, in UpdateHostsInput) ([]HostGroup, error) {
	hostnames, err := expandPattern(pattern, limits)
	if err != nil {
		return nil, err
	}

	var groups []HostGroup
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hosts, err := requireHosts(tx, hostnames, limits.batch())
		if err != nil {
			return err
		}

		if in.Profiles != nil {
			profiles, err := findProfiles(tx, in.Profiles.Slice())
			if err != nil {
				return err
			}
			for _, chunk := range chunks(hostIDs(hosts), limits.batch()) {
				if err := tx.Where("host_id IN ?", chunk).Delete(&models.HostProfile{}).Error; err != nil {
					return err
				}
			}
			if err := linkProfiles(tx, hosts, profiles, limits); err != nil {
				return err
			}
		}

		groups, err = groupHosts(tx, hosts, limits)
		return err
	})
	if err != nil {
		return nil, translateError(err, "Host profile already assigned")
	}
	return groups, nil
}

// DeleteHosts removes every host of the pattern together with its profile
// links and alias overrides. Nothing is deleted unless all hosts exist.
func DeleteHosts(ctx context.Context, db *gorm.DB, limits Limits, pattern string) error {
	hostnames, err := expandPattern(pattern, limits)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hosts, err := requireHosts(tx, hostnames, limits.batch())
		if err != nil {
			return err
		}

		for _, chunk := range chunks(hostIDs(hosts), limits.batch()) {
			if err := tx.Where("host_id IN ?", chunk).Delete(&models.HostProfile{}).Error; err != nil {
				return err
			}
			if err := tx.Where("host_id IN ?", chunk).Delete(&models.Alias{}).Error; err != nil {
				return err
			}
			if err := tx.Where("host_id IN ?", chunk).Delete(&models.Host{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func linkProfiles(tx *gorm.DB, hosts []models.Host, profiles []models.Profile, limits Limits) error {
	if len(profiles) == 0 || len(hosts) == 0 {
		return nil
	}
	links := make([]models.HostProfile, 0, len(hosts)*len(profiles))
	for _, h := range hosts {
		for _, p := range profiles {
			links = append(links, models.HostProfile{HostID: h.HostID, ProfileID: p.ProfileID})
		}
	}
	return tx.CreateInBatches(&links, rowsPerBatch(tx, limits.batch(), 2)).Error
}

// groupHosts folds hosts sharing a profile set into one HostGroup. Groups are
// ordered by their profile name lists.
func groupHosts(tx *gorm.DB, hosts []models.Host, limits Limits) ([]HostGroup, error) {
	if len(hosts) == 0 {
		return []HostGroup{}, nil
	}

	byHost, err := profilesByHost(tx, hostIDs(hosts), limits.batch())
	if err != nil {
		return nil, err
	}

	type group struct {
		profiles []models.Profile
		names    []string
		hosts    []string
	}
	groups := make(map[string]*group)
	for _, h := range hosts {
		profiles := SortProfiles(byHost[h.HostID])
		names := make([]string, len(profiles))
		for i, p := range profiles {
			names[i] = p.ProfileName
		}
		key := strings.Join(names, "\x00")
		g, ok := groups[key]
		if !ok {
			g = &group{profiles: profiles, names: names}
			groups[key] = g
		}
		g.hosts = append(g.hosts, h.Hostname)
	}

	out := make([]HostGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, HostGroup{
			Name:       nodeset.Fold(g.hosts),
			Profiles:   g.names,
			Attributes: MergeAttributes(g.profiles),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessStrings(out[i].Profiles, out[j].Profiles)
	})
	return out, nil
}

// lessStrings orders string slices lexicographically, shorter prefix first.
func lessStrings(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
