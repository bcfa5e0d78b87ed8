// Package recognition runs the background loop that asks users to
// classify submissions nobody has labeled yet. The loop is fixed-delay
// and self-deactivating: an empty scan parks it until an external wake.
package recognition
