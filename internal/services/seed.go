// seed.go
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
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/models"
	"github.com/localnerve/bootmgr/internal/types"
)

// SeedData is the initial content written by initdb.
type SeedData struct {
	Profiles []struct {
		Name       string            `yaml:"name"`
		Weight     int               `yaml:"weight"`
		Attributes map[string]string `yaml:"attributes"`
	} `yaml:"profiles"`
	Resources []struct {
		Name        string `yaml:"name"`
		TemplateURI string `yaml:"template_uri"`
	} `yaml:"resources"`
	Aliases []struct {
		Name   string `yaml:"name"`
		Target string `yaml:"target"`
	} `yaml:"aliases"`
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(src []byte) (*SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(src, &seed); err != nil {
		return nil, fmt.Errorf("invalid seed data: %w", err)
	}
	for _, p := range seed.Profiles {
		if !types.IsIdentifier(p.Name) {
			return nil, fmt.Errorf("invalid seed data: bad profile name %q", p.Name)
		}
	}
	for _, r := range seed.Resources {
		if !types.IsIdentifier(r.Name) {
			return nil, fmt.Errorf("invalid seed data: bad resource name %q", r.Name)
		}
	}
	for _, a := range seed.Aliases {
		if !types.IsIdentifier(a.Name) {
			return nil, fmt.Errorf("invalid seed data: bad alias name %q", a.Name)
		}
	}
	return &seed, nil
}

// SeedResult counts the rows Seed created.
type SeedResult struct {
	Profiles  int
	Resources int
	Aliases   int
}

// Seed writes seed rows that do not exist yet. Existing rows are not modified.
func Seed(ctx context.Context, db *gorm.DB, seed *SeedData) (SeedResult, error) {
	var result SeedResult

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range seed.Profiles {
			found, err := exists(tx, &models.Profile{}, "profile_name", p.Name)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			profile := models.Profile{ProfileName: p.Name, Weight: p.Weight, Attributes: models.Attributes(p.Attributes)}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			result.Profiles++
		}

		for _, r := range seed.Resources {
			found, err := exists(tx, &models.Resource{}, "resource_name", r.Name)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			resource := models.Resource{ResourceName: r.Name, TemplateURI: r.TemplateURI}
			if err := tx.Create(&resource).Error; err != nil {
				return err
			}
			result.Resources++
		}

		for _, a := range seed.Aliases {
			if _, err := findDefaultAlias(tx, a.Name); err == nil {
				continue
			} else if !isNotFound(err) {
				return err
			}
			target, err := findResource(tx, a.Target)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Alias{AliasName: a.Name, TargetID: target.ResourceID}).Error; err != nil {
				return err
			}
			result.Aliases++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, translateError(err, "Seed row already exists")
	}

	logger.L().Info("seed data loaded",
		zap.Int("profiles", result.Profiles),
		zap.Int("resources", result.Resources),
		zap.Int("aliases", result.Aliases))
	return result, nil
}

func exists(tx *gorm.DB, model interface{}, column, value string) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
