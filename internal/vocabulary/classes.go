package vocabulary

// Classes.
const (
	MeetingClass            = Besluit + "Vergaderactiviteit"
	AgendaClass             = Besluitvorming + "Agenda"
	ItemClass               = Besluit + "Agendapunt"
	SchedulingActivityClass = Besluitvorming + "Agendering"
	RequestClass            = DBpedia + "UnitOfWork"
	TreatmentClass          = Besluit + "BehandelingVanAgendapunt"
	NewsletterClass         = Besluitvorming + "NieuwsbriefInfo"
)

// Agenda status concepts.
const (
	StatusDesign   = "http://kanselarij.vo.data.gift/id/agendastatus/2735d084-63d1-499f-86f4-9b69eb33727f"
	StatusApproved = "http://kanselarij.vo.data.gift/id/agendastatus/ff0539e6-3e63-450b-a9b7-cc6463a0d3d1"
	StatusClosed   = "http://kanselarij.vo.data.gift/id/agendastatus/f06f2b9f-b3e5-4315-8892-501b00650101"
)

// ApprovalFormallyOK is the only approval concept that passes enforcement.
const ApprovalFormallyOK = "http://kanselarij.vo.data.gift/id/concept/goedkeurings-statussen/CC12A7DB-A73A-4589-9D53-F3C2F4A40636"

// ApprovalNotYetOK is the concept fixtures and tools use for a pending item.
const ApprovalNotYetOK = "http://kanselarij.vo.data.gift/id/concept/goedkeurings-statussen/B72D1561-8172-466B-B3B6-FCC372C287D0"
