// Package se2 implements rigid-body poses in the plane.
//
// A [Transform] is a rotation followed by a translation, stored as a 3x3
// homogeneous matrix:
//
//	| cos θ  -sin θ  x |
//	| sin θ   cos θ  y |
//	|   0       0    1 |
//
// Poses are combined with [Compose] (matrix product a·b, "b expressed in a's
// frame"), inverted with [Transform.Inverse] and applied to points with
// [Transform.Apply] or, for a batch of homogeneous column points,
// [Transform.ApplyBatch].
//
// # Mutation
//
// [Compose], [Transform.Inverse] and [Transform.Clone] always return fresh
// values. Only the explicit mutators ([Transform.Increment], [Transform.SetX],
// [Transform.SetY], [Transform.SetAngle], [Transform.SetTranslation],
// [Transform.Reset]) modify a pose in place.
//
// Behaviour for NaN or Inf input is undefined.
package se2
