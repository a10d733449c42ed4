// Package osa executes generated scripts through an external osascript
// interpreter, one subprocess per request.
//
// The engine writes UTF-8 script text to the child's stdin, closes it,
// buffers stdout until the child exits or the deadline elapses, and
// parses the JSON result envelope. Every call inserts a token into a
// shared PendingSet on spawn and removes it on any terminal state, so
// the host's shutdown Coordinator can refuse to exit while spawned work
// is still in flight.
//
// The only environmental dependency is the Spawner; tests inject a stub
// and never touch a real interpreter.
package osa
