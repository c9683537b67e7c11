// Package conv provides checked integer conversions.
//
// Encoded geometries carry uint32 counts that are multiplied by vertex
// strides and added to offsets. These helpers make every such step
// overflow-checked so a hostile count cannot wrap into a small, in-bounds
// value.
package conv
