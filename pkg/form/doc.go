/*
Package form implements the calculator form that hosts drive.

A Form owns one InputSet. Every mutation (Set, SetMode, Reset, Restore)
synchronously re-validates the snapshot and recomputes the axis before
returning the new Outcome, so a host never observes stale output. A Form is
not safe for concurrent use; hosts serialize access per session.
*/
package form
