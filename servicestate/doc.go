/*
Package servicestate binds remote data services to a unidirectional state store.

For each service it produces action creators wrapping the asynchronous CRUD calls,
a pure reducer folding the lifecycle of those calls and inbound real-time events
into a small State record, and helpers to aggregate a status summary across services
and to pre-bind creators to a dispatch function.
*/
package servicestate
