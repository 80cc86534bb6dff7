// Package store provides implementations of slims.RunStore.
//
// The RunStore interface is defined in the root slims package
// (../store_interface.go) to avoid import cycles between the slims
// and store packages.
//
// Step invocations are tracked only while in flight. Flow runs belong to
// the server and are never persisted here.
package store
