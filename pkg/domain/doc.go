/*
Package domain contains the core data models of the coredata resolver layer.

It defines what the resolvers exchange with their host: entity descriptors, the lookup and
fetch descriptions a resolver yields, and the receive actions it produces once a response is
available. This package is kept pure and free of I/O, following Hexagonal Architecture
principles.

# Key Entities

  - Entity: Static metadata identifying a resource type and its REST root.
  - EntityQuery: A request for the descriptors of a (kind, name) pair.
  - FetchRequest: A description of a GET the host should perform.
  - Action: A normalized description of data the host should merge into its store.
*/
package domain
