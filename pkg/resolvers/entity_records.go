package resolvers

import (
	"github.com/aretw0/coredata/pkg/domain"
)

type entityRecords struct {
	machine
	kind string
	name string
}

// GetEntityRecords resolves every record of the kind/name entity.
func GetEntityRecords(kind, name string) Resolver {
	return &entityRecords{kind: kind, name: name}
}

func (r *entityRecords) Name() string { return NameGetEntityRecords }

func (r *entityRecords) Next(value any) (Step, error) {
	switch r.phase {
	case phaseStart:
		return r.lookup(r.kind, r.name)

	case phaseLookup:
		entity, err := entityFrom(value, r.kind, r.name)
		if err != nil {
			return r.fail(err)
		}
		return r.fetch(EntityRecordsPath(entity))

	case phaseFetch:
		payload, err := payloadFrom(value)
		if err != nil {
			return r.fail(err)
		}
		records, err := decodeRecords(payload)
		if err != nil {
			return r.fail(err)
		}
		return r.dispatch(domain.ReceiveEntityRecords{
			Kind:    r.kind,
			Name:    r.name,
			Records: records,
			Query:   map[string]any{},
		})
	}

	return r.finish()
}

func (r *entityRecords) Throw(err error) (Step, error) {
	return r.throw(err)
}
