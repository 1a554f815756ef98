package appuser

import "context"

// Store persists staff accounts. Username uniqueness is enforced by the
// store; violations surface as sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, user User) (int64, error)
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id int64, patch Patch) error
	Delete(ctx context.Context, id int64) error
}
