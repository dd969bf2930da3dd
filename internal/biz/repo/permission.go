package repo

import "context"

// PermissionRepo is the explicitly managed set of users allowed to create
// chats and manage participants
type PermissionRepo interface {
	Grant(ctx context.Context, userID, grantedBy string) error
	Revoke(ctx context.Context, userID string) error
	Has(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]string, error)
}
