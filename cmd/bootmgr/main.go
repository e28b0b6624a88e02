package main

import (
	"fmt"
	"os"

	"github.com/localnerve/bootmgr/internal/commands"
)

// @title bootmgr API
// @version 1.0
// @description Network boot configuration manager: hosts, weighted profiles, resources and aliases with one-shot overrides

// @contact.name API Support
// @contact.url https://github.com/localnerve/bootmgr
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @BasePath /api/v1.0
// @schemes http https

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
