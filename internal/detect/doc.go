// Package detect discovers the currently playing track from external
// sources. Two sources are supported: a now-playing text file rewritten by DJ
// software, and a hosted live playlist page polled over HTTP. Both emit
// canonical Track values through a callback and suppress duplicates within a
// configurable window.
package detect
