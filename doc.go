// Package finbase is the data-management core of a personal-finance
// application: accounts, securities, transactions, exchange rates and tax
// years held in an in-memory, mutable, auditable object store.
//
// The package is organized around a generic versioned-item framework shared
// by every entity kind:
//   - Field Value Store: per-item map from field identifier to value, with
//     per-field encrypted storage resolved through the vault package.
//   - History Stack: per-item undo stack of field-store snapshots, the basis
//     of multi-level cancel and dirty-state derivation.
//   - Data List: ordered, id-indexed collection of items of one kind, styled
//     as authoritative (Core), working copy (Edit), frozen (Clone) or
//     changeset scratch (Update).
//   - Instance Maps: rebuildable per-list indexes enforcing uniqueness and
//     cardinality without full scans.
//   - Touch Graph: a full recomputation pass marking which entities are still
//     referenced, guarding deletion and auto-closure.
//   - Composite identities: holdings synthesized from a (portfolio, security)
//     pair with a bit-packed numeric id.
//   - Cross-currency rebasing: dated conversion rates bridged through a
//     designated default currency.
//
// The framework assumes the full working set fits in memory and a single
// edit session at a time. There is no locking because there is no concurrent
// access; correctness depends on the strict phase ordering
// load → resolve links → sort → rebuild maps → touch pass → ready.
//
// Entity-specific business rules are supplied by hooks; persistence, report
// generation and key management are external collaborators (the store
// subpackage ships a reference persistence collaborator).
package finbase
