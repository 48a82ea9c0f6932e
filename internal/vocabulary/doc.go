// Package vocabulary holds the IRIs the agenda graph is written in.
//
// The values are the wire format shared with every other service reading
// the store, so they must not change. Go names describe what each edge
// means; the IRIs keep their public ontology spelling.
package vocabulary
