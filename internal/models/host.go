// host.go
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

package models

import "time"

// Host is a bootable machine identified by its hostname.
type Host struct {
	HostID    uint64 `gorm:"primaryKey;autoIncrement"`
	Hostname  string `gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for Host
func (Host) TableName() string {
	return "hosts"
}

// HostProfile links a host to one of its profiles.
type HostProfile struct {
	HostID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	ProfileID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name for HostProfile
func (HostProfile) TableName() string {
	return "host_profiles"
}
