// Package habitat holds the core layout model: module records, the ordered
// registry, and the selection. It has no rendering or persistence
// dependencies; the viewport and the store consume it from the outside.
package habitat
