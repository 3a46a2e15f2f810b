/*
Package conversation compiles dialogue scripts into traversable graphs.

It is the core of Parley: a script (see package script) goes in, a validated
Conversation comes out, and a cursor walks it line by line. This package is
kept pure and free of I/O or persistence, following Hexagonal Architecture
principles; loaders, stores and handlers live behind the ports.

# Key Entities

  - Node: one compiled line with its kind tag (talk, choice, enter, exit).
  - Conversation: the graph plus the cursor, moved with Advance and JumpTo.
  - Session: the persistable snapshot of one traversal (script, line, history).
  - Hooks: optional callbacks fired by the facade as the cursor moves.

# Compilation

Compile validates everything up front and fails on the first problem: a
script with no lines, an unknown talker, a duplicate id, a dangling next or
choice target, or zero or several start lines. A successful Compile
guarantees every transition in the graph lands on a real line, so traversal
never has to re-validate.

Edges follow the authored links: next beats choices when both are present,
choice edges point at the chosen targets, and a line marked end gets no
outgoing edges no matter what else it declares.
*/
package conversation
