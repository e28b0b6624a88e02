package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

// ProfileHandler handles profile routes
type ProfileHandler struct {
	DB *gorm.DB
}

// CreateProfile handles POST /profiles
// @Summary Add a profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param body body services.CreateProfileInput true "Profile"
// @Success 200 {object} services.ProfileView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	var in services.CreateProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	profile, err := services.CreateProfile(c.UserContext(), h.DB, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile)
}

// ListProfiles handles GET /profiles
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} services.ProfileView
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := services.ListProfiles(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profiles)
}

// GetProfile handles GET /profiles/:name
// @Summary Get a profile
// @Tags Profiles
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} services.ProfileView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profiles/{name} [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	profile, err := services.GetProfile(c.UserContext(), h.DB, name)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile)
}

// UpdateProfile handles PATCH /profiles/:name
// @Summary Update a profile
// @Description Replace the attributes and/or the weight of a profile. Absent fields are untouched.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param name path string true "Profile name"
// @Param body body services.UpdateProfileInput true "Fields to change"
// @Success 200 {object} services.ProfileView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profiles/{name} [patch]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var in services.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	profile, err := services.UpdateProfile(c.UserContext(), h.DB, name, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, profile)
}

// DeleteProfile handles DELETE /profiles/:name
// @Summary Delete a profile
// @Description Delete a profile and remove it from every host
// @Tags Profiles
// @Param name path string true "Profile name"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profiles/{name} [delete]
func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}

	if err := services.DeleteProfile(c.UserContext(), h.DB, name); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}
