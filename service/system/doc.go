// Package system provides the synchronous helpers compiled programs and the
// bridge layer rely on: file read/write through afs and flat JSON field
// extraction.
package system
