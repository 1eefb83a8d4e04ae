/*
Package realtime feeds remote service events into a store.

Listen turns mutation events into the bound service's event actions, which keep
the cached query result in sync. Replicator mirrors a filtered, sorted subset of
a service and publishes snapshots meant for the bound service's store field.
*/
package realtime
