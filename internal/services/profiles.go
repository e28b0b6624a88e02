// profiles.go
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

	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/types"
)

// ProfileView is the API representation of a profile.
type ProfileView struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Weight     int               `json:"weight"`
}

// CreateProfileInput is the body of POST /profiles.
type CreateProfileInput struct {
	Name       string            `json:"name" validate:"required,identifier"`
	Attributes map[string]string `json:"attributes"`
	Weight     *types.FlexInt    `json:"weight"`
}

// UpdateProfileInput is the body of PATCH /profiles/{name}. Absent fields are left alone.
type UpdateProfileInput struct {
	Attributes map[string]string `json:"attributes"`
	Weight     *types.FlexInt    `json:"weight"`
}

func newProfileView(p models.Profile) ProfileView {
	attrs := map[string]string(p.Attributes.Clone())
	return ProfileView{Name: p.ProfileName, Attributes: attrs, Weight: p.Weight}
}

// CreateProfile adds a profile.
func CreateProfile(ctx context.Context, db *gorm.DB, in CreateProfileInput) (ProfileView, error) {
	if err := types.Validate(&in); err != nil {
		return ProfileView{}, err
	}

	profile := models.Profile{
		ProfileName: in.Name,
		Attributes:  models.Attributes(in.Attributes),
	}
	if in.Weight != nil {
		profile.Weight = in.Weight.Int()
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&profile).Error
	})
	if err != nil {
		return ProfileView{}, translateError(err, "Profile already exists")
	}
	return newProfileView(profile), nil
}

// ListProfiles returns every profile ordered by name.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]ProfileView, error) {
	var profiles []models.Profile
	if err := db.WithContext(ctx).Order("profile_name").Find(&profiles).Error; err != nil {
		return nil, err
	}
	out := make([]ProfileView, len(profiles))
	for i, p := range profiles {
		out[i] = newProfileView(p)
	}
	return out, nil
}

// GetProfile returns a single profile.
func GetProfile(ctx context.Context, db *gorm.DB, name string) (ProfileView, error) {
	p, err := findProfile(db.WithContext(ctx), name)
	if err != nil {
		return ProfileView{}, err
	}
	return newProfileView(*p), nil
}

// UpdateProfile replaces the attributes and/or weight of a profile.
func UpdateProfile(ctx context.Context, db *gorm.DB, name string, in UpdateProfileInput) (ProfileView, error) {
	var profile *models.Profile

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if profile, err = findProfile(tx, name); err != nil {
			return err
		}
		if in.Attributes == nil && in.Weight == nil {
			return nil
		}
		if in.Attributes != nil {
			profile.Attributes = models.Attributes(in.Attributes)
		}
		if in.Weight != nil {
			profile.Weight = in.Weight.Int()
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		return ProfileView{}, translateError(err, "Profile already exists")
	}
	return newProfileView(*profile), nil
}

// DeleteProfile removes a profile and drops it from every host's profile set.
func DeleteProfile(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := findProfile(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ProfileID).Delete(&models.HostProfile{}).Error; err != nil {
			return err
		}
		return tx.Delete(profile).Error
	})
}
