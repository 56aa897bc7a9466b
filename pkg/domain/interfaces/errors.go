package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when an entity does not exist
var ErrNotFound = goerr.New("not found")
