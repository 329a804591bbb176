// Package monitorfs exposes module metrics as a FUSE filesystem. Each
// enabled module becomes a directory under the mountpoint, each metric entry
// a read-only file, and each writable entry a write-only file. Modules with
// json or shell aggregates enabled additionally expose json and shell files
// in their directory.
//
// The tree is rebuilt per module when its entry set changes shape, so files
// appear and disappear as hardware comes and goes.
package monitorfs
