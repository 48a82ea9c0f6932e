package service

import (
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/repository"
)

// Repos bundles the typed views over one store.
type Repos struct {
	Meetings      repository.MeetingRepo
	Agendas       repository.AgendaRepo
	Items         repository.ItemRepo
	Collaborators repository.CollaboratorRepo
}

func NewGraphRepos(store graph.Store) Repos {
	return Repos{
		Meetings:      repository.NewGraphMeetingRepo(store),
		Agendas:       repository.NewGraphAgendaRepo(store),
		Items:         repository.NewGraphItemRepo(store),
		Collaborators: repository.NewGraphCollaboratorRepo(store),
	}
}
