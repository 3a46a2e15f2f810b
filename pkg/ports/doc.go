/*
Package ports defines the driven ports (interfaces) for the Parley engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various script sources, session stores, and transports.

# Key Interfaces

  - ScriptLoader: Responsible for loading script documents (e.g., from disk or memory).
  - SessionStore: Responsible for persisting and loading traversal Sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Engine: The facade surface transport adapters drive.
*/
package ports
