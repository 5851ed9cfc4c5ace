// Package journal records the flows served by ecigate-server in an
// embedded Badger database.
//
// Entries are keyed by ULID, so a prefix scan returns them in arrival
// order. Retention is enforced with Badger TTLs and a background value
// log GC reclaims space. The journal never stores passwords or COMMAREA
// contents.
package journal
