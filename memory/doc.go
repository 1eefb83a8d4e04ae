/*
Package memory provides an in-memory remote service and a route registry.
It behaves like a small document store: records keyed by an id field, a query
language for Find, not-found errors and real-time mutation events.
*/
package memory
