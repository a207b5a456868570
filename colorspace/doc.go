// Package colorspace implements the color-space conversions the adjustment
// pipeline is built on: sRGB transfer functions, linear RGB to CIE XYZ,
// CIELAB/LCH, ProPhoto RGB, the darktable UCS working space used for color
// grading, JzAzBz, Bradford chromatic adaptation, and Kelvin white points.
//
// All conversions operate on float64 triples for precision; the pipeline
// converts its float32 buffers at the boundary. Functions are pure and
// allocation-free.
package colorspace
