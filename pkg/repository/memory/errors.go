package memory

import "github.com/secmon-lab/tyche/pkg/domain/interfaces"

// ErrNotFound is returned when an entity does not exist in the repository
var ErrNotFound = interfaces.ErrNotFound
