// Command inspect_schema prints the DDL GORM generates for the bootmgr models.
package main

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"

	"github.com/localnerve/bootmgr/internal/database"
)

func main() {
	db, err := database.Open(sqlite.Open(":memory:"), "silent")
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var objects []struct {
		Name string
		SQL  string
	}
	db.Raw("SELECT name, sql FROM sqlite_master WHERE type IN ('table', 'index') AND sql IS NOT NULL ORDER BY tbl_name, type DESC, name").Scan(&objects)

	for _, o := range objects {
		fmt.Printf("\n=== %s ===\n%s\n", o.Name, o.SQL)
	}
}
