// Package helio projects heliographic latitude/longitude onto a detected
// solar disk and rasterizes a coordinate grid.
//
// # Projection
//
// The default model is orthographic with the observer over the solar
// equator and the rotation axis vertical (B0 = P = 0). Only the near
// hemisphere, longitudes in [-90, 90], is ever sampled, so with the default
// geometry no point is ever hidden behind the limb; visibility only changes
// when a point falls off the image canvas.
//
// ObserverGeometry is the extension point for a tilted (B0) or rotated (P)
// axis. It is opt-in; the zero value keeps the simplified model.
//
// Orientation is fixed: +latitude is up in the image, +longitude is right.
//
// # Grid
//
// GridConfig.Build produces one GridLine per parallel and per meridian,
// keeping every sample with a visibility flag. GridLine.Segments splits a
// line at invisible samples so a renderer never draws across a clipped gap.
//
// Everything here is a pure computation over its arguments and is safe for
// concurrent use.
package helio
