// Package editor owns a flow being edited and its undo history.
//
// Every change goes through a Command. The Manager applies each command to a
// copy of the flow and only swaps the copy in when the command succeeds, so
// readers never observe a half-applied change.
package editor
