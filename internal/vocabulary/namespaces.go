package vocabulary

// Namespaces.
const (
	RDF            = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	Core           = "http://mu.semte.ch/vocabularies/core/"
	Ext            = "http://mu.semte.ch/vocabularies/ext/"
	DCT            = "http://purl.org/dc/terms/"
	Prov           = "http://www.w3.org/ns/prov#"
	Schema         = "http://schema.org/"
	Besluit        = "http://data.vlaanderen.be/ns/besluit#"
	Besluitvorming = "http://data.vlaanderen.be/ns/besluitvorming#"
	DBpedia        = "http://dbpedia.org/ontology/"
)

// Resource bases for newly minted identifiers.
const (
	AgendaBase = "http://themis.vlaanderen.be/id/agenda/"
	ItemBase   = "http://themis.vlaanderen.be/id/agendapunt/"
)
