package data

import (
	_ "embed"
)

//go:embed seed.yaml
var Seed []byte
