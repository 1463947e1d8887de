package ports

import "context"

// ParamStore persists session parameters across navigation between the
// setup step and the session surface. Values are plain strings.
type ParamStore interface {
	// Get returns domain.ErrParamNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns the stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
}
