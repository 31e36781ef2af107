// Package storage defines the persistence contract for partners and
// support interactions, plus the sentinel errors and tenant helpers shared
// by the adapters in its subpackages (memory, postgres, sqlite).
package storage
