// Package walk implements deterministic walks over a two-way transition
// graph driven by a repeating instruction sequence.
//
// Three operations cover the package's needs:
//   - StepsToGoal: count steps from one state to one goal state
//   - DetectCycle: find the periodic pattern a walk settles into, with the
//     in-cycle phases at which it sits on an accepting state
//   - Synchronize: find the first global step at which every cycle is on
//     an accepting phase at once (CRT generalized to several residues per
//     modulus, periods need not be coprime)
//
// Graphs are immutable after NewGraph and safe for concurrent readers.
// Everything else is a pure function of its arguments.
package walk
