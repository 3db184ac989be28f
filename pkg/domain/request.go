package domain

// EntityQuery asks the host for the entity descriptors of a kind.
// Name is the descriptor the resolver is going to pick from the answer.
type EntityQuery struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// FetchRequest describes a GET the host performs on behalf of a resolver.
// Path is relative to the API root and already carries its query string.
type FetchRequest struct {
	Path string `json:"path"`
}

// PostRef identifies a post by id and post type name.
type PostRef struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}
