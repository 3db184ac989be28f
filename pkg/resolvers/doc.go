/*
Package resolvers implements the data resolvers of the editor's client-side data layer.

A resolver never performs I/O. It is a small step machine driven by a host: every call to
Next (or Throw) returns the next Step the host must act on, and the host resumes the resolver
with the answer.

	r := resolvers.GetEntityRecord("root", "postType", "post")
	step, _ := r.Next(nil)        // StepLookup{root/postType}
	step, _ = r.Next(entities)    // StepFetch{/wp/v2/types/post?context=edit}
	step, _ = r.Next(payload)     // StepDispatch{ReceiveEntityRecords}
	step, _ = r.Next(nil)         // StepDone

Lookups are answered with []domain.Entity, fetches with the raw JSON payload
(json.RawMessage). A failed fetch is handed back with Throw; only the embed preview resolver
recovers from one (HTTP 404), every other failure is returned unchanged.

See pkg/runner for a host that drives resolvers against real adapters.
*/
package resolvers
