package repository

import (
	"context"

	"github.com/iliyamo/theater-service/internal/model"
)

// TheaterStore is a unit of work over the theaters table.  Reads go
// straight to the backend; Add, Update and Remove only stage a change that
// becomes durable when SaveChanges succeeds.  A store is not safe for
// concurrent use and is meant to live for a single request.
type TheaterStore interface {
	FindByID(ctx context.Context, id int64) (*model.Theater, error)
	ListAll(ctx context.Context) ([]*model.Theater, error)
	Add(t *model.Theater)
	Update(t *model.Theater)
	Remove(t *model.Theater)
	// SaveChanges commits every staged change atomically and assigns ids to
	// added theaters.  Staged changes are cleared whether or not it succeeds.
	SaveChanges(ctx context.Context) error
}

// StoreFactory opens a fresh TheaterStore.  Handlers call it once per request.
type StoreFactory func() TheaterStore

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opRemove
)

// pendingOp is a change staged on a store until SaveChanges.
type pendingOp struct {
	kind    opKind
	theater *model.Theater
}
