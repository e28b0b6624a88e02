// resource.go
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

import (
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/types"
)

// Resource points at a template that can be rendered for a host.
type Resource struct {
	ResourceID   uint64 `gorm:"primaryKey;autoIncrement"`
	ResourceName string `gorm:"uniqueIndex;size:255;not null"`
	TemplateURI  string `gorm:"size:4096;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for Resource
func (Resource) TableName() string {
	return "resources"
}

// BeforeSave rejects template locators that are not file:// URIs.
func (r *Resource) BeforeSave(tx *gorm.DB) error {
	if _, err := render.ParseTemplateURI(r.TemplateURI); err != nil {
		return types.NewValidationError("Unable to parse template URI")
	}
	return nil
}

// NoHost is the HostID of an alias default row.
const NoHost uint64 = 0

// Alias redirects a name to a resource. The row with HostID == NoHost is the
// default; rows with a host are per-host overrides.
type Alias struct {
	AliasID    uint64 `gorm:"primaryKey;autoIncrement"`
	AliasName  string `gorm:"size:255;not null;uniqueIndex:idx_alias_name_host,priority:1"`
	HostID     uint64 `gorm:"not null;default:0;uniqueIndex:idx_alias_name_host,priority:2;index:idx_aliases_host_id"`
	TargetID   uint64 `gorm:"not null;index"`
	Autodelete bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for Alias
func (Alias) TableName() string {
	return "aliases"
}

// IsDefault reports whether a is the default row of its alias.
func (a Alias) IsDefault() bool {
	return a.HostID == NoHost
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Host{},
		&HostProfile{},
		&Resource{},
		&Alias{},
	}
}
