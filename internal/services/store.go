// store.go
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
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/types"
)

// Limits bounds bulk operations.
type Limits struct {
	// MaxNodeset is the largest host-range expansion accepted.
	MaxNodeset int
	// BatchSize is the number of rows per insert batch and per IN (...) lookup.
	BatchSize int
}

// DefaultLimits matches the configuration defaults.
var DefaultLimits = Limits{MaxNodeset: 100000, BatchSize: 1000}

func (l Limits) batch() int {
	if l.BatchSize <= 0 {
		return DefaultLimits.BatchSize
	}
	return l.BatchSize
}

// SQL Server rejects statements with more than 2100 bind parameters.
const mssqlMaxParams = 2000

// rowsPerBatch caps an insert batch so columns*rows stays within the dialect's
// bind parameter limit.
func rowsPerBatch(tx *gorm.DB, batch, columns int) int {
	if tx.Dialector.Name() == "sqlserver" && batch*columns > mssqlMaxParams {
		return mssqlMaxParams / columns
	}
	return batch
}

// chunks splits items into consecutive slices of at most size elements.
func chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = max(len(items), 1)
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// quiet silences the SQL log for lookups that are expected to miss.
func quiet(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})
}

func findProfile(tx *gorm.DB, name string) (*models.Profile, error) {
	var p models.Profile
	if err := quiet(tx).Where("profile_name = ?", name).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Profile '%s' not found", name)
		}
		return nil, err
	}
	return &p, nil
}

func findHost(tx *gorm.DB, hostname string) (*models.Host, error) {
	var h models.Host
	if err := quiet(tx).Where("hostname = ?", hostname).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Host '%s' not found", hostname)
		}
		return nil, err
	}
	return &h, nil
}

func findResource(tx *gorm.DB, name string) (*models.Resource, error) {
	var r models.Resource
	if err := quiet(tx).Where("resource_name = ?", name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Resource '%s' not found", name)
		}
		return nil, err
	}
	return &r, nil
}

// findProfiles loads the named profiles, failing on the first missing name.
func findProfiles(tx *gorm.DB, names []string) ([]models.Profile, error) {
	uniq := uniqueStrings(names)
	if len(uniq) == 0 {
		return nil, nil
	}

	var profiles []models.Profile
	if err := tx.Where("profile_name IN ?", uniq).Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) != len(uniq) {
		found := make(map[string]bool, len(profiles))
		for _, p := range profiles {
			found[p.ProfileName] = true
		}
		for _, name := range uniq {
			if !found[name] {
				return nil, types.NewNotFoundError("Profile '%s' not found", name)
			}
		}
	}
	return profiles, nil
}

// lookupHosts loads the existing hosts among hostnames.
func lookupHosts(tx *gorm.DB, hostnames []string, batch int) ([]models.Host, error) {
	hosts := make([]models.Host, 0, len(hostnames))
	for _, chunk := range chunks(hostnames, batch) {
		var part []models.Host
		if err := tx.Where("hostname IN ?", chunk).Find(&part).Error; err != nil {
			return nil, err
		}
		hosts = append(hosts, part...)
	}
	return hosts, nil
}

// requireHosts loads hostnames and fails unless every one of them exists.
func requireHosts(tx *gorm.DB, hostnames []string, batch int) ([]models.Host, error) {
	hosts, err := lookupHosts(tx, hostnames, batch)
	if err != nil {
		return nil, err
	}
	if len(hosts) != len(hostnames) {
		return nil, types.NewNotFoundError("Host not found")
	}
	return hosts, nil
}

// profilesByHost returns the profiles linked to each of hostIDs. A nil hostIDs
// loads every link.
func profilesByHost(tx *gorm.DB, hostIDs []uint64, batch int) (map[uint64][]models.Profile, error) {
	var links []models.HostProfile
	if hostIDs == nil {
		if err := tx.Find(&links).Error; err != nil {
			return nil, err
		}
	} else {
		for _, chunk := range chunks(hostIDs, batch) {
			var part []models.HostProfile
			if err := tx.Where("host_id IN ?", chunk).Find(&part).Error; err != nil {
				return nil, err
			}
			links = append(links, part...)
		}
	}

	profileIDs := make([]uint64, 0)
	seen := make(map[uint64]bool)
	for _, l := range links {
		if !seen[l.ProfileID] {
			seen[l.ProfileID] = true
			profileIDs = append(profileIDs, l.ProfileID)
		}
	}

	byID := make(map[uint64]models.Profile, len(profileIDs))
	for _, chunk := range chunks(profileIDs, batch) {
		var part []models.Profile
		if err := tx.Where("profile_id IN ?", chunk).Find(&part).Error; err != nil {
			return nil, err
		}
		for _, p := range part {
			byID[p.ProfileID] = p
		}
	}

	out := make(map[uint64][]models.Profile)
	for _, l := range links {
		if p, ok := byID[l.ProfileID]; ok {
			out[l.HostID] = append(out[l.HostID], p)
		}
	}
	return out, nil
}

func hostIDs(hosts []models.Host) []uint64 {
	ids := make([]uint64, len(hosts))
	for i, h := range hosts {
		ids[i] = h.HostID
	}
	return ids
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
