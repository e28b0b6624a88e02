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


package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

// HostHandler handles host routes
type HostHandler struct {
	DB     *gorm.DB
	Limits services.Limits
}

// CreateHosts handles POST /hosts
// @Summary Add hosts
// @Description Expand a host-range pattern and add one host per name, all assigned the same profiles
// @Tags Hosts
// @Accept json
// @Produce json
// @Param body body services.CreateHostsInput true "Host pattern and profiles"
// @Success 200 {array} services.HostGroup
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /hosts [post]
func (h *HostHandler) CreateHosts(c *fiber.Ctx) error {
	var in services.CreateHostsInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	groups, err := services.CreateHosts(c.UserContext(), h.DB, h.Limits, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, groups)
}

// ListHosts handles GET /hosts
// @Summary List hosts
// @Description List every host, grouped by identical profile sets
// @Tags Hosts
// @Produce json
// @Success 200 {array} services.HostGroup
// @Router /hosts [get]
func (h *HostHandler) ListHosts(c *fiber.Ctx) error {
	groups, err := services.ListHosts(c.UserContext(), h.DB, h.Limits)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, groups)
}

// GetHosts handles GET /hosts/:pattern
// @Summary Get hosts
// @Description Get the existing hosts of a pattern, grouped by identical profile sets
// @Tags Hosts
// @Produce json
// @Param pattern path string true "Host-range pattern, URL-escaped"
// @Success 200 {array} services.HostGroup
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /hosts/{pattern} [get]
func (h *HostHandler) GetHosts(c *fiber.Ctx) error {
	pattern, err := pathParam(c, "pattern")
	if err != nil {
		return err
	}

	groups, err := services.GetHosts(c.UserContext(), h.DB, h.Limits, pattern)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, groups)
}

// UpdateHosts handles PATCH /hosts/:pattern
// @Summary Update hosts
// @Description Replace the profile set of every host of a pattern
// @Tags Hosts
// @Accept json
// @Produce json
// @Param pattern path string true "Host-range pattern, URL-escaped"
// @Param body body services.UpdateHostsInput true "New profile set"
// @Success 200 {array} services.HostGroup
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /hosts/{pattern} [patch]
func (h *HostHandler) UpdateHosts(c *fiber.Ctx) error {
	pattern, err := pathParam(c, "pattern")
	if err != nil {
		return err
	}
	var in services.UpdateHostsInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	groups, err := services.UpdateHosts(c.UserContext(), h.DB, h.Limits, pattern, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, groups)
}

// DeleteHosts handles DELETE /hosts/:pattern
// @Summary Delete hosts
// @Description Delete every host of a pattern with their overrides. Fails unless all exist.
// @Tags Hosts
// @Param pattern path string true "Host-range pattern, URL-escaped"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /hosts/{pattern} [delete]
func (h *HostHandler) DeleteHosts(c *fiber.Ctx) error {
	pattern, err := pathParam(c, "pattern")
	if err != nil {
		return err
	}

	if err := services.DeleteHosts(c.UserContext(), h.DB, h.Limits, pattern); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}
