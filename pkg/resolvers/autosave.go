package resolvers

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/coredata/pkg/domain"
)

type autosave struct {
	machine
	post domain.PostRef
}

// GetAutosave resolves the latest autosave of a post.
// A post without autosaves finishes without dispatching anything.
func GetAutosave(post domain.PostRef) Resolver {
	return &autosave{post: post}
}

func (r *autosave) Name() string { return NameGetAutosave }

func (r *autosave) Next(value any) (Step, error) {
	switch r.phase {
	case phaseStart:
		return r.lookup(domain.KindPostType, r.post.Type)

	case phaseLookup:
		entity, err := entityFrom(value, domain.KindPostType, r.post.Type)
		if err != nil {
			return r.fail(err)
		}
		return r.fetch(AutosavesPath(entity, r.post.ID))

	case phaseFetch:
		payload, err := payloadFrom(value)
		if err != nil {
			return r.fail(err)
		}
		var autosaves []domain.Record
		if err := json.Unmarshal(payload, &autosaves); err != nil {
			return r.fail(fmt.Errorf("decoding autosaves: %w", err))
		}
		if len(autosaves) == 0 {
			return r.done()
		}
		return r.dispatch(domain.ReceiveAutosave{PostID: r.post.ID, Autosave: autosaves[0]})
	}

	return r.finish()
}

func (r *autosave) Throw(err error) (Step, error) {
	return r.throw(err)
}
