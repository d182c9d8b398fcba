package docnumber

import "context"

type UseCase interface {
	// Allocate claims the next number of kind in its own transaction.
	Allocate(ctx context.Context, kind Kind) (*Number, error)
}
