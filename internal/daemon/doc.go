// Package daemon coordinates the encore background services: the track
// sources, the detection pipeline, the notification dispatcher, and the
// status API. It enforces single-instance execution via a lock file.
package daemon
