// resources.go
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

// ResourceView is the API representation of a resource.
type ResourceView struct {
	Name        string `json:"name"`
	TemplateURI string `json:"template_uri"`
}

// CreateResourceInput is the body of POST /resources.
type CreateResourceInput struct {
	Name        string `json:"name" validate:"required,identifier"`
	TemplateURI string `json:"template_uri" validate:"required"`
}

// UpdateResourceInput is the body of PATCH /resources/{name}.
type UpdateResourceInput struct {
	TemplateURI *string `json:"template_uri"`
}

func newResourceView(r models.Resource) ResourceView {
	return ResourceView{Name: r.ResourceName, TemplateURI: r.TemplateURI}
}

// CreateResource adds a resource. The template URI is checked by the model's save hook.
func CreateResource(ctx context.Context, db *gorm.DB, in CreateResourceInput) (ResourceView, error) {
	if err := types.Validate(&in); err != nil {
		return ResourceView{}, err
	}

	resource := models.Resource{ResourceName: in.Name, TemplateURI: in.TemplateURI}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&resource).Error
	})
	if err != nil {
		return ResourceView{}, translateError(err, "Resource already exists")
	}
	return newResourceView(resource), nil
}

// ListResources returns every resource ordered by name.
func ListResources(ctx context.Context, db *gorm.DB) ([]ResourceView, error) {
	var resources []models.Resource
	if err := db.WithContext(ctx).Order("resource_name").Find(&resources).Error; err != nil {
		return nil, err
	}
	out := make([]ResourceView, len(resources))
	for i, r := range resources {
		out[i] = newResourceView(r)
	}
	return out, nil
}

// GetResource returns a single resource.
func GetResource(ctx context.Context, db *gorm.DB, name string) (ResourceView, error) {
	r, err := findResource(db.WithContext(ctx), name)
	if err != nil {
		return ResourceView{}, err
	}
	return newResourceView(*r), nil
}

// UpdateResource changes the template URI of a resource.
func UpdateResource(ctx context.Context, db *gorm.DB, name string, in UpdateResourceInput) (ResourceView, error) {
	var resource *models.Resource

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if resource, err = findResource(tx, name); err != nil {
			return err
		}
		if in.TemplateURI == nil {
			return nil
		}
		resource.TemplateURI = *in.TemplateURI
		return tx.Save(resource).Error
	})
	if err != nil {
		return ResourceView{}, translateError(err, "Resource already exists")
	}
	return newResourceView(*resource), nil
}

// DeleteResource removes a resource. Aliases pointing at it are left dangling
// and fail resolution until repointed.
func DeleteResource(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resource, err := findResource(tx, name)
		if err != nil {
			return err
		}
		return tx.Delete(resource).Error
	})
}
