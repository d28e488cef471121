// Package render draws a detected disk and its heliographic grid onto an
// image.
//
// Strokes are anti-aliased by distance-based coverage and alpha-blended
// with go-colorful. Each grid line accumulates its coverage before it is
// blended, so a polyline never darkens where its own segments overlap.
// Overlapping lines blend in draw order.
//
// The optional label uses the 7x13 bitmap font from golang.org/x/image,
// magnified by a whole factor so it reads at about 2% of the image height.
package render
