// dbcontainer.go
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


// Package dbcontainer starts disposable MariaDB and PostgreSQL servers with
// testcontainers for integration tests and local development.
package dbcontainer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/localnerve/bootmgr/internal/config"
	"github.com/localnerve/bootmgr/internal/database"
	"github.com/localnerve/bootmgr/internal/logger"
)

const (
	user     = "bootmgr"
	password = "bootmgr"
	dbName   = "bootmgr"
)

type flavor struct {
	image string
	port  string
	env   map[string]string
	ready string
}

var flavors = map[string]flavor{
	"mariadb": {
		image: "mariadb:11",
		port:  "3306",
		env: map[string]string{
			"MARIADB_ROOT_PASSWORD": password,
			"MARIADB_DATABASE":      dbName,
			"MARIADB_USER":          user,
			"MARIADB_PASSWORD":      password,
		},
		ready: "ready for connections",
	},
	"postgres": {
		image: "postgres:16-alpine",
		port:  "5432",
		env: map[string]string{
			"POSTGRES_DB":       dbName,
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
		},
		ready: "database system is ready to accept connections",
	},
}

// Database is a running database container and the configuration that
// reaches it from the host.
type Database struct {
	Container testcontainers.Container
	Config    *config.Config
}

// Start runs a container for dbType ("mariadb" or "postgres") and waits until
// it accepts connections. BMGR_TEST_DB_IMAGE overrides the image.
func Start(ctx context.Context, dbType string) (*Database, error) {
	fl, ok := flavors[dbType]
	if !ok {
		return nil, fmt.Errorf("no container flavor for database type %q", dbType)
	}
	if img := os.Getenv("BMGR_TEST_DB_IMAGE"); img != "" {
		fl.image = img
	}

	tcpPort, err := nat.NewPort("tcp", fl.port)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	if present, err := imageExists(ctx, fl.image); err != nil {
		logger.L().Warn("cannot list docker images", zap.Error(err))
	} else if !present {
		logger.L().Info("pulling database image", zap.String("image", fl.image))
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        fl.image,
			ExposedPorts: []string{string(tcpPort)},
			Env:          fl.env,
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.AutoRemove = true
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(tcpPort),
				wait.ForLog(fl.ready),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", dbType, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, err
	}
	mapped, err := c.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, err
	}

	d := &Database{
		Container: c,
		Config: &config.Config{
			Port:              "3000",
			DBType:            dbType,
			DBHost:            host,
			DBPort:            mapped.Port(),
			DBDatabase:        dbName,
			DBUser:            user,
			DBPassword:        password,
			DBConnectionLimit: 5,
			SQLLogLevel:       "silent",
			TemplatePath:      os.TempDir(),
			MaxTemplateBytes:  1 << 20,
			MaxNodeset:        100000,
			BatchSize:         1000,
			LogLevel:          "info",
			LogFormat:         "console",
		},
	}

	if err := d.waitReady(ctx); err != nil {
		_ = c.Terminate(ctx)
		return nil, err
	}

	logger.L().Info("database container started",
		zap.String("type", dbType),
		zap.String("host", host),
		zap.String("port", mapped.Port()))
	return d, nil
}

// Terminate stops and removes the container.
func (d *Database) Terminate(ctx context.Context) error {
	return d.Container.Terminate(ctx)
}

// Env returns the BMGR_ variables pointing a bootmgr process at the container.
func (d *Database) Env() map[string]string {
	return map[string]string{
		"BMGR_DB_TYPE":     d.Config.DBType,
		"BMGR_DB_HOST":     d.Config.DBHost,
		"BMGR_DB_PORT":     d.Config.DBPort,
		"BMGR_DB_DATABASE": d.Config.DBDatabase,
		"BMGR_DB_USER":     d.Config.DBUser,
		"BMGR_DB_PASSWORD": d.Config.DBPassword,
	}
}

// waitReady pings until the server answers; the readiness log line of both
// images is printed once before a restart during initialization.
func (d *Database) waitReady(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 30; i++ {
		db, err := database.Connect(d.Config)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				err = sqlDB.PingContext(ctx)
			} else {
				err = dbErr
			}
			_ = database.Close(db)
			if err == nil {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", lastErr)
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}
