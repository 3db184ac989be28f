package resolvers

import (
	"github.com/aretw0/coredata/pkg/domain"
)

type entityRecord struct {
	machine
	kind string
	name string
	id   string
}

// GetEntityRecord resolves a single record of the kind/name entity.
func GetEntityRecord(kind, name, id string) Resolver {
	return &entityRecord{kind: kind, name: name, id: id}
}

func (r *entityRecord) Name() string { return NameGetEntityRecord }

func (r *entityRecord) Next(value any) (Step, error) {
	switch r.phase {
	case phaseStart:
		return r.lookup(r.kind, r.name)

	case phaseLookup:
		entity, err := entityFrom(value, r.kind, r.name)
		if err != nil {
			return r.fail(err)
		}
		return r.fetch(EntityRecordPath(entity, r.id))

	case phaseFetch:
		payload, err := payloadFrom(value)
		if err != nil {
			return r.fail(err)
		}
		record, err := decodeRecord(payload)
		if err != nil {
			return r.fail(err)
		}
		return r.dispatch(domain.ReceiveEntityRecord(r.kind, r.name, record))
	}

	return r.finish()
}

func (r *entityRecord) Throw(err error) (Step, error) {
	return r.throw(err)
}
