package memory

import "animal-rescue/internal/domain/lifecycle"

var (
	ErrNotFound = lifecycle.ErrRecordNotFound
)
