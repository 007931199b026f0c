// Package repository provides a generic in-memory repository with a
// synchronous and a lazy, push-based read surface.
//
// The repositories are intended for rapid prototyping, teaching, and unit
// testing and not production use. Enumeration happens in insertion order, so
// sequences observed through the stream handles are stable across repeated
// subscriptions.
//
// A Repository offers a whole set of methods already out of the box. That
// might not be enough, though. It is possible to embed MemoryRepository into
// your own type to overwrite or extend the behaviour. See the examples in the
// test files.
//
// Sometimes it might be handy to persist some data, so it is possible to use
// a Store to do so. This is NOT intended for production use and only
// recommended for local demoing of an application.
package repository
