// Package id generates identifiers for vault rows.
//
// Identifiers are UUIDv4 bytes encoded as lowercase unpadded base32, which
// yields 26 URL-safe characters.
package id
