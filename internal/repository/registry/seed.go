package registry

import _ "embed"

// seedData is the initial roster shipped with the service, written to the
// configured data file the first time the store is used.
//
//go:embed seed.json
var seedData []byte
