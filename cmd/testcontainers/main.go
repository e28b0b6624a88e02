// main.go
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


package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/localnerve/bootmgr/internal/dbcontainer"
	"github.com/localnerve/bootmgr/internal/logger"
)

func main() {
	var (
		showHelp    bool
		envFilename string
		dbType      string
	)
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.StringVar(&dbType, "db", "mariadb", "database to start: mariadb or postgres")
	flag.Parse()

	usage := `
Start a disposable database container for bootmgr and print the BMGR_
variables that point a local bootmgr at it. The container is removed on exit.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db mariadb|postgres]

ENV_FILE_PATH: path to a .env file (e.g. setting BMGR_TEST_DB_IMAGE)

example
  testcontainers -db postgres
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	if _, err := logger.Init("info", "console"); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := dbcontainer.Start(ctx, dbType)
	if err != nil {
		log.Fatalf("Failed to start database container: %v\n", err)
	}

	env := db.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("export %s=%s\n", k, env[k])
	}

	<-ctx.Done()
	log.Printf("Received signal, terminating database container...\n")
	if err := db.Terminate(context.Background()); err != nil {
		log.Printf("Failed to terminate database container: %v\n", err)
		os.Exit(1)
	}
}
