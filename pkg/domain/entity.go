package domain

// Entity describes a REST resource type.
// It uses "mapstructure" tags so descriptors can be decoded from loosely typed config maps.
type Entity struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Kind    string `json:"kind" yaml:"kind" mapstructure:"kind"`
	BaseURL string `json:"baseURL" yaml:"baseURL" mapstructure:"baseURL"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	Plural  string `json:"plural,omitempty" yaml:"plural,omitempty" mapstructure:"plural"`
}

// RecordKey returns the record field used to identify records of this entity.
func (e Entity) RecordKey() string {
	if e.Key == "" {
		return DefaultKey
	}
	return e.Key
}

// FindEntity returns the descriptor matching kind and name.
func FindEntity(entities []Entity, kind, name string) (Entity, bool) {
	for _, e := range entities {
		if e.Kind == kind && e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}
