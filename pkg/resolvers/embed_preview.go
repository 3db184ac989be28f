package resolvers

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/coredata/pkg/domain"
)

type embedPreview struct {
	machine
	url string
}

// GetEmbedPreview resolves the oEmbed preview of url.
// A 404 from the proxy means the URL is not embeddable and resolves to a false preview.
func GetEmbedPreview(url string) Resolver {
	return &embedPreview{url: url}
}

func (r *embedPreview) Name() string { return NameGetEmbedPreview }

func (r *embedPreview) Next(value any) (Step, error) {
	switch r.phase {
	case phaseStart:
		return r.fetch(EmbedPreviewPath(r.url))

	case phaseFetch:
		payload, err := payloadFrom(value)
		if err != nil {
			return r.fail(err)
		}
		var preview any
		if err := json.Unmarshal(payload, &preview); err != nil {
			return r.fail(fmt.Errorf("decoding embed preview: %w", err))
		}
		return r.dispatch(domain.ReceiveEmbedPreview{URL: r.url, Preview: preview})
	}

	return r.finish()
}

func (r *embedPreview) Throw(err error) (Step, error) {
	if r.phase == phaseFetch && domain.IsNotFound(err) {
		return r.dispatch(domain.ReceiveEmbedPreview{URL: r.url, Preview: false})
	}
	return r.throw(err)
}
