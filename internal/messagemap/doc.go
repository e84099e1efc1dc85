// Package messagemap maintains the correspondence between a relayed
// message's id on its origin platform and the id(s) of the copies created on
// the other platform, scoped per configured bridge.
//
// The relay logic inserts a pair whenever it forwards a message, then uses
// the forward lookup (Corresponding) when an edit or deletion arrives on the
// origin side and the reverse lookup (CorrespondingReverse) when it arrives
// on the destination side. Entries expire after a configured window, which
// bounds memory under steady load; lookups for expired or never-inserted
// pairs simply return nothing.
//
// With persistence enabled the full index is written through to a
// store.Snapshot on every insert and reloaded at construction, so a restart
// keeps recent correspondences at the cost of one synchronous write per
// relayed message.
package messagemap
