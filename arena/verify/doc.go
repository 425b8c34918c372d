// Package verify validates the block layout of an arena buffer.
//
// # Overview
//
// The checks operate on the raw buffer plus the arena geometry, so they can
// run against a live arena (arena.Check) or against a copied snapshot in
// tests. Each check returns a *ValidationError describing the first
// violation it finds.
//
// Validation categories:
//   - Sentinel: a zero-payload, used, sentinel-flagged header at offset 0
//   - Conservation: the physical block chain covers the buffer exactly and
//     every payload is a multiple of the alignment unit
//   - FreeList: the free list is strictly address-ordered, acyclic, and holds
//     exactly the blocks flagged free
//   - Adjacency: no two physically adjacent blocks are both free
//   - Accounting: bytes free and block counts match the caller's counters
//
// # Quick Start
//
//	if err := verify.AllInvariants(buf, geo, verify.Counters{
//	    BytesFree:  a.BytesFree(),
//	    UsedBlocks: a.UsedBlocks(),
//	    FreeBlocks: a.FreeBlocks(),
//	}); err != nil {
//	    fmt.Printf("arena corrupt: %v\n", err)
//	}
package verify
