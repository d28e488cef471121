// Package imaging provides the pixel-level primitives the solar disk
// detectors are built from.
//
// Everything here operates on 8-bit grayscale planes (*image.Gray) whose
// bounds start at (0, 0); use ToGray to get one from any decoded image.
// The operations are:
//   - ToGray / Matrix: luminance conversion and float access
//   - GaussianBlur: separable smoothing with explicit kernel size and sigma
//   - Canny: Sobel gradients, non-maximum suppression, hysteresis
//   - OtsuThreshold / Binarize: automatic global threshold and mask
//   - Close: morphological closing of a binary mask
//   - EncodePNG: base64 PNG output for JSON results
//   - Save: write an annotated frame to disk, format by extension
//
// # Coordinate System
//
// (0,0) is the top-left corner, X increases rightward and Y increases
// downward. Matrices are indexed [y][x].
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are pure:
// they never modify their inputs and can run concurrently on shared
// images.
//
// # Libraries
//
// Grayscale conversion, resizing and decoding use disintegration/imaging.
// Convolution, dilation/erosion, histograms and thresholding use
// anthonynsimon/bild.
package imaging
