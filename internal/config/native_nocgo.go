//go:build !linux || !cgo

package config

const nativeAvailable = false
