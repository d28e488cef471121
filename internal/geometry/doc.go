// Package geometry holds the small set of planar types shared by the disk
// detectors and the heliographic grid: points, circles, and the validated
// Disk value that every later pipeline stage consumes.
//
// # Coordinate System
//
// Coordinates are image-pixel units with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. A pixel at column x and
// row y has its center at (x, y).
//
// # Fitting
//
// Two circle fits are provided:
//   - MinimalEnclosingCircle: the smallest circle containing every point
//     (randomized incremental algorithm, deterministic seed).
//   - FitCircle: algebraic least-squares fit (Kåsa) solved with gonum,
//     used to refine a coarse circle against its supporting edge pixels.
package geometry
