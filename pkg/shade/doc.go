// Package shade defines the parameter snapshot for a faceted lampshade
// resting on the rim of a drinking glass. Snapshots are immutable values:
// every slider change builds a new one and both solvers read it whole.
package shade
