// Package hash produces keyed digests of short secrets.
//
// One-time codes are stored as digests so a leaked table does not leak live
// codes. A keyed digest is deterministic, which keeps the ledger lookup an
// indexed equality match.
package hash
