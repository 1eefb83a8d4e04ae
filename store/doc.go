/*
Package store provides the dispatch loop bound services plug into: a generic
state container with a middleware chain, plus the promise, thunk, logger and
metrics middleware.
*/
package store
