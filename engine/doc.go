/*
Package engine is the state-reconciliation core of the operator console.

It merges three independently-arriving inputs into one consistent view model:
an initial bulk fetch, a continuous push stream of position and event deltas,
and local interactive polygon edits. Each concern lives in its own store:
Registry holds drivers, GeofenceStore holds zones, AlertFeed holds events and
Editor is the draw/reshape state machine. Every store is mutated only through
its own contract methods. Session ties the stores together and produces
read-only snapshots for the rendering layer.

Servers are the source of truth for persisted zones: every create/update/delete
round trip is followed by a full refresh, so the local collection never drifts
from what the server actually stored.
*/
package engine
