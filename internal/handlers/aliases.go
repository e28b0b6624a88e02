package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

// AliasHandler handles alias and override routes
type AliasHandler struct {
	DB     *gorm.DB
	Limits services.Limits
}

// CreateAlias handles POST /aliases
// @Summary Add an alias
// @Description Create the default entry of an alias
// @Tags Aliases
// @Accept json
// @Produce json
// @Param body body services.CreateAliasInput true "Alias name and default target"
// @Success 200 {object} services.AliasView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /aliases [post]
func (h *AliasHandler) CreateAlias(c *fiber.Ctx) error {
	var in services.CreateAliasInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	alias, err := services.CreateAlias(c.UserContext(), h.DB, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, alias)
}

// SetOverrides handles POST /aliases/:name
// @Summary Override an alias for hosts
// @Description Point the alias at another resource for every host of a pattern, optionally for one render only
// @Tags Aliases
// @Accept json
// @Produce json
// @Param name path string true "Alias name"
// @Param body body services.SetOverrideInput true "Hosts, target and autodelete flag"
// @Success 200 {object} services.AliasView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /aliases/{name} [post]
func (h *AliasHandler) SetOverrides(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var in services.SetOverrideInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	alias, err := services.SetOverrides(c.UserContext(), h.DB, h.Limits, name, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, alias)
}

// ListAliases handles GET /aliases
// @Summary List aliases
// @Tags Aliases
// @Produce json
// @Success 200 {array} services.AliasView
// @Router /aliases [get]
func (h *AliasHandler) ListAliases(c *fiber.Ctx) error {
	aliases, err := services.ListAliases(c.UserContext(), h.DB, h.Limits)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, aliases)
}

// GetAlias handles GET /aliases/:name
// @Summary Get an alias
// @Tags Aliases
// @Produce json
// @Param name path string true "Alias name"
// @Success 200 {object} services.AliasView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /aliases/{name} [get]
func (h *AliasHandler) GetAlias(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	alias, err := services.GetAlias(c.UserContext(), h.DB, h.Limits, name)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, alias)
}

// DeleteAlias handles DELETE /aliases/:name
// @Summary Delete an alias
// @Description Delete the default entry and every override of an alias
// @Tags Aliases
// @Param name path string true "Alias name"
// @Success 204
// @Router /aliases/{name} [delete]
func (h *AliasHandler) DeleteAlias(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	if err := services.DeleteAlias(c.UserContext(), h.DB, name); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}

// RestoreOverrides handles DELETE /aliases/:name/:pattern
// @Summary Restore hosts to the alias default
// @Description Delete the overrides of every host of a pattern. Nothing is deleted unless each host has one.
// @Tags Aliases
// @Param name path string true "Alias name"
// @Param pattern path string true "Host-range pattern, URL-escaped"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /aliases/{name}/{pattern} [delete]
func (h *AliasHandler) RestoreOverrides(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	pattern, err := pathParam(c, "pattern")
	if err != nil {
		return err
	}

	if err := services.RestoreOverrides(c.UserContext(), h.DB, h.Limits, name, pattern); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}
