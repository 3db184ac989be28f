/*
Package ports defines the driven ports (interfaces) of the coredata resolver layer.

These interfaces decouple the resolvers and their runner from concrete implementations,
allowing the same resolvers to run against a live REST API, a recorded fixture, an in-memory
store or Redis.

# Key Interfaces

  - EntityRegistry: Answers entity lookups (kind, name) -> descriptors.
  - Fetcher: Performs the GET a resolver describes (the apiFetch collaborator).
  - ActionDispatcher: Receives the actions a resolver produces.
  - RecordStore: An ActionDispatcher that keeps the received data queryable.
*/
package ports
