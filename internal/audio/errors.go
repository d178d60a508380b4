package audio

import "errors"

var (
	ErrInvalidBlockCount = errors.New("block count out of range")
	ErrInvalidCapacity   = errors.New("block capacity must be positive")
	ErrForeignBlock      = errors.New("block does not belong to this pool")
	ErrNotOwned          = errors.New("block is not in the expected ownership state")
)

const (
	// MinBlocks and MaxBlocks bound the pool depth.
	MinBlocks = 2
	MaxBlocks = 16
)
