package domain

type AgendaStatus string

const (
	AgendaDesign   AgendaStatus = "design"
	AgendaApproved AgendaStatus = "approved"
	AgendaClosed   AgendaStatus = "closed"
)

// Category decides which numbering run an item belongs to.
type Category string

const (
	CategoryNote         Category = "note"
	CategoryAnnouncement Category = "announcement"
)

// Approval is the decoded "formally OK" flag of an item.
type Approval string

const (
	ApprovalUnset Approval = ""
	ApprovalOK    Approval = "ok"
	ApprovalNotOK Approval = "not_ok"
)
