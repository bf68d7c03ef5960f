// Package limits provides the batch size ceilings and validation functions
// used by the messaging core and its transport collaborators. This package
// ensures consistent size enforcement across every component that writes
// or reads a wire blob.
//
// # Batch Size Hierarchy
//
// The messaging core recognizes exactly two ceilings, selected by
// delivery class:
//
//   - NonFragmentedMaxBatchBytes (1300 bytes): the ceiling for every
//     delivery class except ReliableFragmentedSequenced. This is the
//     conservative MTU-safe datagram size used by most peer-to-peer
//     game protocols.
//
//   - FragmentedMaxBatchBytes (64000 bytes): the ceiling for batches
//     tagged ReliableFragmentedSequenced, whose transport is expected to
//     fragment and reassemble below the messaging core.
//
// # Validation Functions
//
// Each validation function checks for an empty buffer and a size limit
// violation:
//
//	err := limits.ValidateBatchSize(blob, limits.NonFragmentedMaxBatchBytes)
//	if err != nil {
//	    // handle ErrBufferEmpty or ErrMessageTooLarge
//	}
//
// # Error Types
//
//   - ErrBufferEmpty: returned when an empty or nil buffer is provided.
//   - ErrMessageTooLarge: returned when data exceeds the specified limit.
package limits
