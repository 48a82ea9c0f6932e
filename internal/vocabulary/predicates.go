package vocabulary

// Generic predicates.
const (
	// Type is rdf:type.
	Type = RDF + "type"

	// UUID is the external identifier literal of every resource.
	UUID = Core + "uuid"

	Created  = DCT + "created"
	Modified = DCT + "modified"
	Title    = DCT + "title"

	// HasPart links an agenda to each of its items.
	HasPart = DCT + "hasPart"

	// WasRevisionOf is the provenance edge from a generation to the one it
	// supersedes, for both agendas and items.
	WasRevisionOf = Prov + "wasRevisionOf"
)

// Meeting predicates.
const (
	// PlannedStart is the meeting date.
	PlannedStart = Besluit + "geplandeStart"

	// FinalVersion flags a meeting whose agenda is closed.
	FinalVersion = Ext + "finaleZittingVersie"

	// TreatedAgenda links a closed meeting to the agenda it treated.
	TreatedAgenda = Besluitvorming + "behandelt"

	// GeneralNewsletter links a meeting to its newsletter record.
	GeneralNewsletter = Ext + "algemeneNieuwsbrief"

	// PublicationFor links a publication record to its meeting.
	PublicationFor = Ext + "isPublicatieVoorZitting"
)

// Agenda predicates.
const (
	AgendaStatus = Besluitvorming + "agendaStatus"

	// IsAgendaFor links an agenda to its meeting.
	IsAgendaFor = Besluitvorming + "isAgendaVoor"

	// SerialNumber holds the agenda's serial label (A, B, ...).
	SerialNumber = Besluitvorming + "volgnummer"
)

// Item predicates.
const (
	// ItemCreated is the item's own creation timestamp. It is never
	// carried over to a later generation.
	ItemCreated = Besluitvorming + "aanmaakdatum"

	// Position is the item's sequence number within its category.
	Position = Schema + "position"

	// IsAnnouncement marks items numbered in the announcement run.
	IsAnnouncement = Ext + "wordtGetoondAlsMededeling"

	// FormallyOK holds the approval concept of an item.
	FormallyOK = Ext + "formeelOK"
)

// Collaborator predicates. The records behind them are opaque here.
const (
	// GeneratesItem links a scheduling activity to the items it produced.
	GeneratesItem = Besluitvorming + "genereertAgendapunt"

	// TakesPlaceDuring links a scheduling activity to its request.
	TakesPlaceDuring = Besluitvorming + "vindtPlaatsTijdens"

	// RequestedFor links a request to the meeting it asks a slot on.
	RequestedFor = Besluitvorming + "isAangevraagdVoor"

	// HasSubject links a treatment record to the item it treats.
	HasSubject = Besluitvorming + "heeftOnderwerp"

	// HasDecision links a treatment record to its decision record.
	HasDecision = Besluitvorming + "heeftBeslissing"

	// Generated links a treatment record to its newsletter record.
	Generated = Prov + "generated"
)
