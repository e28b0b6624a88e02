// server.go
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


// Package server assembles the Fiber application: middleware, metrics,
// documentation and the /api/v1.0 routes.
package server

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	_ "github.com/localnerve/bootmgr/docs/api" // Swagger docs
	"github.com/localnerve/bootmgr/internal/handlers"
	"github.com/localnerve/bootmgr/internal/middleware"
	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/services"
	"github.com/localnerve/bootmgr/internal/utils"
)

// APIPrefix is the mount point of the JSON API.
const APIPrefix = "/api/v" + middleware.APIVersion

// Options are the dependencies of the application.
type Options struct {
	DB        *gorm.DB
	DBType    string
	Limits    services.Limits
	Renderer  render.Renderer
	Templates services.TemplateChecker

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry prometheus.Registerer
}

// New builds the application.
func New(opts Options) *fiber.App {
	if opts.Registry == nil {
		opts.Registry = prometheus.DefaultRegisterer
	}

	app := fiber.New(fiber.Config{
		AppName:               "bootmgr",
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.NewWithRegistry(opts.Registry, "bootmgr", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{DB: opts.DB, DBType: opts.DBType, Templates: opts.Templates}
	app.Get("/healthz", health.Health)

	api := app.Group(APIPrefix, middleware.VersionMiddleware())
	registerRoutes(api, opts)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "Not found: "+c.Path())
	})

	return app
}

func registerRoutes(api fiber.Router, opts Options) {
	hosts := &handlers.HostHandler{DB: opts.DB, Limits: opts.Limits}
	profiles := &handlers.ProfileHandler{DB: opts.DB}
	resources := &handlers.ResourceHandler{DB: opts.DB, Renderer: opts.Renderer}
	aliases := &handlers.AliasHandler{DB: opts.DB, Limits: opts.Limits}

	api.Post("/hosts", hosts.CreateHosts)
	api.Get("/hosts", hosts.ListHosts)
	api.Get("/hosts/:pattern", hosts.GetHosts)
	api.Patch("/hosts/:pattern", hosts.UpdateHosts)
	api.Delete("/hosts/:pattern", hosts.DeleteHosts)

	api.Post("/profiles", profiles.CreateProfile)
	api.Get("/profiles", profiles.ListProfiles)
	api.Get("/profiles/:name", profiles.GetProfile)
	api.Patch("/profiles/:name", profiles.UpdateProfile)
	api.Delete("/profiles/:name", profiles.DeleteProfile)

	api.Post("/resources", resources.CreateResource)
	api.Get("/resources", resources.ListResources)
	api.Get("/resources/:name", resources.GetResource)
	api.Get("/resources/:name/:host", resources.RenderResource)
	api.Patch("/resources/:name", resources.UpdateResource)
	api.Delete("/resources/:name", resources.DeleteResource)

	api.Post("/aliases", aliases.CreateAlias)
	api.Get("/aliases", aliases.ListAliases)
	api.Post("/aliases/:name", aliases.SetOverrides)
	api.Get("/aliases/:name", aliases.GetAlias)
	api.Delete("/aliases/:name", aliases.DeleteAlias)
	api.Delete("/aliases/:name/:pattern", aliases.RestoreOverrides)
}
