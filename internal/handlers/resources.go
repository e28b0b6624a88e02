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


package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

// ResourceHandler handles resource routes and template rendering
type ResourceHandler struct {
	DB       *gorm.DB
	Renderer render.Renderer
}

// CreateResource handles POST /resources
// @Summary Add a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param body body services.CreateResourceInput true "Resource"
// @Success 200 {object} services.ResourceView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /resources [post]
func (h *ResourceHandler) CreateResource(c *fiber.Ctx) error {
	var in services.CreateResourceInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	resource, err := services.CreateResource(c.UserContext(), h.DB, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, resource)
}

// ListResources handles GET /resources
// @Summary List resources
// @Tags Resources
// @Produce json
// @Success 200 {array} services.ResourceView
// @Router /resources [get]
func (h *ResourceHandler) ListResources(c *fiber.Ctx) error {
	resources, err := services.ListResources(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, resources)
}

// GetResource handles GET /resources/:name
// @Summary Get a resource
// @Tags Resources
// @Produce json
// @Param name path string true "Resource name"
// @Success 200 {object} services.ResourceView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /resources/{name} [get]
func (h *ResourceHandler) GetResource(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	resource, err := services.GetResource(c.UserContext(), h.DB, name)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, resource)
}

// UpdateResource handles PATCH /resources/:name
// @Summary Update a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param name path string true "Resource name"
// @Param body body services.UpdateResourceInput true "Fields to change"
// @Success 200 {object} services.ResourceView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /resources/{name} [patch]
func (h *ResourceHandler) UpdateResource(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var in services.UpdateResourceInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	resource, err := services.UpdateResource(c.UserContext(), h.DB, name, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, resource)
}

// DeleteResource handles DELETE /resources/:name
// @Summary Delete a resource
// @Description Aliases pointing at the resource are kept and fail to resolve until repointed
// @Tags Resources
// @Param name path string true "Resource name"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /resources/{name} [delete]
func (h *ResourceHandler) DeleteResource(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	if err := services.DeleteResource(c.UserContext(), h.DB, name); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}

// RenderResource handles GET /resources/:name/:host
// @Summary Render a resource for a host
// @Description Resolve name as an alias (host override first, then default) or a resource, consume a one-shot override and render the template with the host's attributes
// @Tags Resources
// @Produce plain
// @Param name path string true "Resource or alias name"
// @Param host path string true "Hostname"
// @Success 200 {string} string "Rendered template"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /resources/{name}/{host} [get]
func (h *ResourceHandler) RenderResource(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	host, err := pathParam(c, "host")
	if err != nil {
		return err
	}

	out, err := services.RenderResource(c.UserContext(), h.DB, h.Renderer, name, host)
	if err != nil {
		return err
	}
	return utils.TextResponse(c, out)
}
