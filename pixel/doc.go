// Package pixel implements the 1-bit color model and frame buffers used by e-paper panels.
//
// The images in this package are compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces. A set bit is white paper, a cleared bit is ink.
package pixel
