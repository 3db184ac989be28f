package domain

// Entity kinds and names shipped with the default registry.
const (
	KindRoot     = "root"
	KindPostType = "postType"
	KindTaxonomy = "taxonomy"

	// DefaultKey is the record field used as identity when an Entity does not set Key.
	DefaultKey = "id"

	// ContextEdit is the REST context every resolver requests.
	ContextEdit = "edit"
)
