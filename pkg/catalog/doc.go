// Package catalog implements the shop and product catalog on top of a
// relational store and a shop search index.
//
// # Stores
//
// The relational store is canonical. The search index holds a denormalized
// copy of every shop and is only written by this package: after each
// committed shop write ([Service.CreateShop], [Service.UpdateShop]), by the
// one-time [Backfiller], and by the [Reconciler].
//
// # Writes
//
// Shop writes validate first, so invalid input never reaches a store. The
// shop is then saved, read back, and mirrored into the index. An index
// failure does not undo the relational write: it is logged, counted in the
// shopapp_index_mirror_failures_total metric, and the caller receives the
// committed shop. Deleting a shop first detaches its products, which are
// kept without a shop.
//
// # Queries
//
// [Router] maps a [ShopQuery] to a store with an ordered rule table: sort
// first, then name search on the index, then the relational filter
// combinations, then the unfiltered listing.
//
// # Errors
//
// Operations return [*ValidationError], [*NotFoundError] or
// [*PersistenceError]. The latter keeps the underlying store error and is
// unwrappable with errors.Is and errors.As.
package catalog
