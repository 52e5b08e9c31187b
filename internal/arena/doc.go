// Package arena provides the allocate/free pairs that back every signal
// buffer and snapshot of an FMU instance.
//
// An instance captures exactly one [Allocator] at creation and uses it for
// its whole lifetime. Buffers must be returned to the allocator that
// produced them:
//
//   - [Heap]: plain Go allocation, Free is a no-op
//   - [Funcs]: adapts a host-supplied allocate/free function pair
//   - [Pool]: recycles buffers of the same length
//   - [Tracker]: wraps another allocator and counts outstanding buffers
//
// # Thread Safety
//
// [Pool] and [Tracker] may be shared by independently driven instances.
package arena
