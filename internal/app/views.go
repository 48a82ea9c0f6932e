package app

import (
	"time"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/service"
)

// AgendaResult identifies the agenda an action produced or touched.
type AgendaResult struct {
	MeetingID string              `json:"meetingId"`
	AgendaID  string              `json:"agendaId"`
	AgendaIRI string              `json:"agendaUri"`
	Serial    string              `json:"serial"`
	Status    domain.AgendaStatus `json:"status"`
}

func agendaResult(meetingID string, a *domain.Agenda) *AgendaResult {
	if a == nil {
		return &AgendaResult{MeetingID: meetingID}
	}
	return &AgendaResult{
		MeetingID: meetingID,
		AgendaID:  a.ID,
		AgendaIRI: a.IRI,
		Serial:    a.Serial,
		Status:    a.Status,
	}
}

type MeetingView struct {
	ID      string        `json:"id"`
	IRI     string        `json:"uri"`
	Date    time.Time     `json:"plannedStart"`
	Final   bool          `json:"final"`
	Agendas []*AgendaView `json:"agendas"`
}

type AgendaView struct {
	ID       string              `json:"id"`
	IRI      string              `json:"uri"`
	Serial   string              `json:"serial"`
	Title    string              `json:"title"`
	Status   domain.AgendaStatus `json:"status"`
	Previous string              `json:"previous,omitempty"`
	Modified time.Time           `json:"modified"`
	Items    []*ItemView         `json:"items"`
}

type ItemView struct {
	ID       string          `json:"id"`
	IRI      string          `json:"uri"`
	Category domain.Category `json:"category"`
	Number   *int            `json:"number,omitempty"`
	Approval domain.Approval `json:"approval,omitempty"`
	New      bool            `json:"new"`
}

func meetingView(ov *service.Overview) *MeetingView {
	m := ov.Meeting
	v := &MeetingView{ID: m.ID, IRI: m.IRI, Date: m.Date, Final: m.Final, Agendas: []*AgendaView{}}
	for _, ao := range ov.Agendas {
		a := ao.Agenda
		av := &AgendaView{
			ID:       a.ID,
			IRI:      a.IRI,
			Serial:   a.Serial,
			Title:    a.Title,
			Status:   a.Status,
			Previous: a.Previous,
			Modified: a.Modified,
			Items:    make([]*ItemView, 0, len(ao.Items)),
		}
		for _, it := range ao.Items {
			iv := &ItemView{ID: it.ID, IRI: it.IRI, Category: it.Category, Approval: it.Approval, New: it.IsNew()}
			if it.HasNumber {
				n := it.Number
				iv.Number = &n
			}
			av.Items = append(av.Items, iv)
		}
		v.Agendas = append(v.Agendas, av)
	}
	return v
}
