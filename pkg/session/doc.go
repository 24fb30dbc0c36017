/*
Package session implements session management and persistence orchestration.

It serializes access to each calculator session, combining reference-counted
local locks with an optional distributed lock so several replicas can share
one SessionStore, and offers read-modify-write helpers over that store.
*/
package session
