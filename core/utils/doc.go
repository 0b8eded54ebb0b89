// Package utils provides loose type conversion helpers used when decoding
// query strings and JSON request bodies.
package utils
