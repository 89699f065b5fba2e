package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users
	Tasks() Tasks

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Tasks() Tasks
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A username or email collision, including one that appears between a
	// prior existence check and this insert, returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by their stored (lowercased) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmailOrUsername reports whether any identity already holds
	// the email or the username. foldUsername makes the username
	// comparison case-insensitive.
	ExistsByEmailOrUsername(ctx context.Context, email, username string, foldUsername bool) (bool, error)
}

type Tasks interface {
	// CreateTask inserts a new task with its owner already set.
	CreateTask(ctx context.Context, t domain.Task) error

	// GetTaskForOwner fetches a task by (id, owner) in a single combined
	// predicate. A task that exists under another owner is ErrNotFound,
	// indistinguishable from one that does not exist at all.
	GetTaskForOwner(ctx context.Context, id, ownerID string) (domain.Task, error)

	// ListTasksByOwner returns every task owned by ownerID, ordered by
	// creation time then id.
	ListTasksByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)

	// UpdateTask rewrites the mutable fields of the task matching
	// (t.ID, t.OwnerID). ErrNotFound when no row matches.
	UpdateTask(ctx context.Context, t domain.Task) error

	// DeleteTask removes the task matching (id, ownerID). ErrNotFound
	// when no row matches; deletion is never silently idempotent.
	DeleteTask(ctx context.Context, id, ownerID string) error
}
