package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// Collection endpoints used to discover dynamic kinds.
const (
	TypesPath      = "/wp/v2/types?context=edit"
	TaxonomiesPath = "/wp/v2/taxonomies?context=edit"
)

// restResource is the subset of a type or taxonomy object needed to build a descriptor.
type restResource struct {
	Slug     string `json:"slug"`
	RestBase string `json:"rest_base"`
}

// LoadKind discovers the descriptors of kind through fetcher and registers them.
// Supported kinds are postType and taxonomy; anything else returns domain.ErrKindNotLoadable.
func (r *Registry) LoadKind(ctx context.Context, fetcher ports.Fetcher, kind string) error {
	var path string
	switch kind {
	case domain.KindPostType:
		path = TypesPath
	case domain.KindTaxonomy:
		path = TaxonomiesPath
	default:
		return fmt.Errorf("%w: %s", domain.ErrKindNotLoadable, kind)
	}

	payload, err := fetcher.Fetch(ctx, domain.FetchRequest{Path: path})
	if err != nil {
		return fmt.Errorf("loading %s entities: %w", kind, err)
	}

	var resources map[string]restResource
	if err := json.Unmarshal(payload, &resources); err != nil {
		return fmt.Errorf("decoding %s entities: %w", kind, err)
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := resources[name]
		if res.RestBase == "" {
			continue
		}
		r.Register(domain.Entity{
			Kind:    kind,
			Name:    name,
			BaseURL: "/wp/v2/" + res.RestBase,
		})
	}

	return nil
}

var _ ports.KindLoader = (*Registry)(nil)
var _ ports.EntityRegistry = (*Registry)(nil)
