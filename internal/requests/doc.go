// Package requests persists crowd song requests and play history in SQLite
// and exposes the lifecycle transitions the detection pipeline drives.
//
// The Store manages database connections, schema initialization, request
// intake with canonical normalized fields, the playing/played transitions,
// and the notification-sent flag. Only the pipeline moves requests into
// playing and played; intake, payment, and rejection happen upstream and are
// reflected here as plain status values.
//
// Treat this package as the single source of truth for request lifecycle
// semantics; when you add new statuses or fields, update schema.sql and bump
// schemaVersion.
package requests
