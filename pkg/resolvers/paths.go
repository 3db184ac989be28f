package resolvers

import (
	"fmt"
	"net/url"

	"github.com/aretw0/coredata/pkg/domain"
)

// EmbedProxyPath is the oEmbed proxy endpoint of the REST API.
const EmbedProxyPath = "/oembed/1.0/proxy"

func editQuery() string {
	return url.Values{"context": {domain.ContextEdit}}.Encode()
}

// EntityRecordPath is the path of a single record: {baseURL}/{id}?context=edit.
func EntityRecordPath(e domain.Entity, id string) string {
	return fmt.Sprintf("%s/%s?%s", e.BaseURL, url.PathEscape(id), editQuery())
}

// EntityRecordsPath is the path of a record collection: {baseURL}?context=edit.
func EntityRecordsPath(e domain.Entity) string {
	return fmt.Sprintf("%s?%s", e.BaseURL, editQuery())
}

// AutosavesPath is the path of the autosaves of a post: {baseURL}/{id}/autosaves?context=edit.
func AutosavesPath(e domain.Entity, postID int) string {
	return fmt.Sprintf("%s/%d/autosaves?%s", e.BaseURL, postID, editQuery())
}

// EmbedPreviewPath is the oEmbed proxy path for rawURL.
func EmbedPreviewPath(rawURL string) string {
	return EmbedProxyPath + "?" + url.Values{"url": {rawURL}}.Encode()
}
