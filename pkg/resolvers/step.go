package resolvers

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/coredata/pkg/domain"
)

// StepKind tags what a resolver expects from its host.
type StepKind int

const (
	// StepLookup asks for the entity descriptors of Step.Query.Kind.
	StepLookup StepKind = iota + 1
	// StepFetch asks the host to perform Step.Request.
	StepFetch
	// StepDispatch hands Step.Action to the host.
	StepDispatch
	// StepDone means the resolver finished. Step.Action is always nil.
	StepDone
)

func (k StepKind) String() string {
	switch k {
	case StepLookup:
		return "lookup"
	case StepFetch:
		return "fetch"
	case StepDispatch:
		return "dispatch"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is a single value yielded by a resolver.
type Step struct {
	Kind    StepKind
	Query   domain.EntityQuery
	Request domain.FetchRequest
	Action  domain.Action
}

// Resolver is a resumable data resolver.
type Resolver interface {
	// Name identifies the resolver in logs and metrics.
	Name() string

	// Next resumes the resolver with the answer to the previous step.
	// The first call takes nil.
	Next(value any) (Step, error)

	// Throw resumes the resolver with the failure of the previous step.
	Throw(err error) (Step, error)
}

// Resolver names.
const (
	NameGetEntityRecord  = "getEntityRecord"
	NameGetEntityRecords = "getEntityRecords"
	NameGetEmbedPreview  = "getEmbedPreview"
	NameGetAutosave      = "getAutosave"
)

// phase is the position of a resolver in its step sequence.
type phase int

const (
	phaseStart phase = iota
	phaseLookup
	phaseFetch
	phaseDispatched
	phaseDone
)

// machine holds the phase shared by every resolver.
type machine struct {
	phase phase
}

func (m *machine) fail(err error) (Step, error) {
	m.phase = phaseDone
	return Step{Kind: StepDone}, err
}

func (m *machine) lookup(kind, name string) (Step, error) {
	m.phase = phaseLookup
	return Step{Kind: StepLookup, Query: domain.EntityQuery{Kind: kind, Name: name}}, nil
}

func (m *machine) fetch(path string) (Step, error) {
	m.phase = phaseFetch
	return Step{Kind: StepFetch, Request: domain.FetchRequest{Path: path}}, nil
}

func (m *machine) dispatch(action domain.Action) (Step, error) {
	m.phase = phaseDispatched
	return Step{Kind: StepDispatch, Action: action}, nil
}

func (m *machine) done() (Step, error) {
	m.phase = phaseDone
	return Step{Kind: StepDone}, nil
}

// finish handles the phases that behave the same in every resolver.
func (m *machine) finish() (Step, error) {
	if m.phase == phaseDispatched {
		return m.done()
	}
	return m.fail(domain.ErrResolverDone)
}

// throw ends the resolver with err. A finished resolver reports ErrResolverDone instead.
func (m *machine) throw(err error) (Step, error) {
	if m.phase == phaseDone {
		return Step{Kind: StepDone}, domain.ErrResolverDone
	}
	return m.fail(err)
}

// entityFrom picks the descriptor for kind/name out of a lookup answer.
func entityFrom(value any, kind, name string) (domain.Entity, error) {
	entities, ok := value.([]domain.Entity)
	if !ok {
		return domain.Entity{}, fmt.Errorf("%w: lookup answered with %T", domain.ErrUnexpectedResume, value)
	}

	entity, ok := domain.FindEntity(entities, kind, name)
	if !ok {
		return domain.Entity{}, fmt.Errorf("%w: %s/%s", domain.ErrEntityConfigNotFound, kind, name)
	}

	return entity, nil
}

// payloadFrom extracts the raw JSON body of a fetch answer.
func payloadFrom(value any) ([]byte, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: fetch answered with %T", domain.ErrUnexpectedResume, value)
	}
}
