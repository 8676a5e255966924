// Package models defines the catalog entities shared by the relational store,
// the search index and the HTTP layer.
//
// # Entities
//
//   - [Shop]: a shop with its weekly [OpeningHours], a vacation flag and a
//     denormalized product count used for sorting
//   - [Product]: an item that optionally belongs to a shop and a category;
//     products outlive their shop
//   - [Category]: a product category
//   - [SyncTracker]: the durable marker written once the search index backfill
//     has completed
//
// # Typed IDs
//
// [ShopID], [ProductID] and [CategoryID] wrap the numeric identifiers generated
// by the relational store. They behave like plain integers for GORM and JSON
// and know how to address the matching SurrealDB record through RecordID.
//
// # Value types
//
// [Date] is a calendar date without time of day, serialized as YYYY-MM-DD.
// [LocalTime] is a time of day with second precision, serialized as HH:MM in
// JSON, HH:MM:SS in SQL and as milliseconds since midnight in CBOR.
//
// [PageRequest] and [Page] carry zero-based pagination across every store.
package models
