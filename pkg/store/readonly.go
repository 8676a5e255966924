package store

import (
	"context"

	"github.com/fullstack/shopapp/pkg/models"
)

// ReadOnlyStore wraps a Store and rejects write operations while isReadOnly
// reports true.
//
// The read-only state is evaluated on every call, so the application can
// toggle it at runtime without recreating the store. Reads, migrations and
// the backfill latch always pass through.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore creates a new read-only wrapper for a store
func NewReadOnlyStore(store Store, isReadOnly func() bool) Store {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return ErrReadOnly
	}
	return nil
}

func (r *ReadOnlyStore) SaveShop(ctx context.Context, shop *models.Shop) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.SaveShop(ctx, shop)
}

func (r *ReadOnlyStore) DeleteShop(ctx context.Context, id models.ShopID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteShop(ctx, id)
}

func (r *ReadOnlyStore) SaveProduct(ctx context.Context, product *models.Product) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.SaveProduct(ctx, product)
}

func (r *ReadOnlyStore) DeleteProduct(ctx context.Context, id models.ProductID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteProduct(ctx, id)
}

func (r *ReadOnlyStore) DetachProducts(ctx context.Context, shopID models.ShopID) (int64, error) {
	if err := r.checkReadOnly(); err != nil {
		return 0, err
	}
	return r.Store.DetachProducts(ctx, shopID)
}

func (r *ReadOnlyStore) SaveCategory(ctx context.Context, category *models.Category) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.SaveCategory(ctx, category)
}

func (r *ReadOnlyStore) DeleteCategory(ctx context.Context, id models.CategoryID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteCategory(ctx, id)
}
