/*
Package ports defines the driven ports (interfaces) of the heart axis calculator.

These interfaces decouple the core logic from external implementations, allowing
sessions to be kept in various storage backends and outcomes to be delivered to
external consumers.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading calculator sessions.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - OutcomePublisher: Delivers computed outcomes to an external channel (e.g., MQTT).
*/
package ports
