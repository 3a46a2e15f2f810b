/*
Package script defines the authored form of a conversation: plain data
structures with no behavior beyond deserialization.

A script document has two top-level lists, talkers and lines. Each line
carries an integer id, display text, an optional talker name, and its
forward links: either a single next id or a list of player-facing choices.
Exactly one line must set start: true. The compiled, traversable form lives
in package conversation.
*/
package script
