// Package detection locates the solar disk in a grayscale image.
//
// Two interchangeable strategies implement the Detector interface:
//
//   - CircleFitDetector ("circle-fit"): gradient-based circular Hough
//     transform over a blurred image. Tolerates gaps in the limb, but can be
//     distracted by unrelated circular artifacts.
//   - ContourFitDetector ("contour-fit"): Otsu threshold, morphological
//     closing, largest outer boundary, minimal enclosing circle. Ignores
//     circular artifacts, but needs a clean bright-disk/dark-sky histogram.
//
// Fallback chains detectors; the "auto" strategy is circle-fit falling back
// to contour-fit. Builds with the opencv tag also register "opencv-hough",
// which runs OpenCV's HoughCircles through gocv.
//
// # Tuning
//
// Every threshold lives in HoughConfig or ContourConfig, so tests can push a
// detector to the edge of its thresholds deterministically. Size-dependent
// values are fractions of the image dimensions.
//
// # Errors
//
// Detectors return ErrDetectionFailure when no disk is found. They never
// fall back to a low-confidence guess, and a zero-radius fit counts as a
// failure. Empty images and invalid tuning return geometry.ErrInvalidInput.
//
// # Coordinate System
//
// Disks are reported in the coordinate space of the input image's bounds:
// origin at the top-left, X rightward, Y downward, pixel centers at integer
// coordinates.
package detection
