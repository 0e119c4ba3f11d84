/*
Package session gives each logical session its own engines.

An engine keeps the temporary bindings of the call in progress, so it must not
serve overlapping Flatten calls. The Manager builds one engine per (session,
grammar) pair on first use, serializes calls per session with a refcounted
mutex (plus an optional distributed lock across replicas), and expires
sessions that have been idle longer than a TTL.
*/
package session
