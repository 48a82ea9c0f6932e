package domain

import (
	"sort"
	"strconv"
	"time"
)

const serialLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Agenda struct {
	IRI      string
	ID       string
	Serial   string
	Title    string
	Status   AgendaStatus
	Meeting  string
	Previous string
	Created  time.Time
	Modified time.Time
}

func (a *Agenda) IsDesign() bool { return a.Status == AgendaDesign }

// SerialLabel names the agenda created after `existing` agendas: A, B, C
// and so on, then the decimal count once the alphabet runs out.
func SerialLabel(existing int) string {
	if existing >= 0 && existing < len(serialLetters) {
		return string(serialLetters[existing])
	}
	return strconv.Itoa(existing)
}

// SerialRank orders serial labels by generation. Unknown labels rank -1.
func SerialRank(label string) int {
	if len(label) == 1 && label[0] >= 'A' && label[0] <= 'Z' {
		return int(label[0] - 'A')
	}
	if n, err := strconv.Atoi(label); err == nil && n >= 0 {
		return n
	}
	return -1
}

// SortAgendas orders agendas oldest generation first. Creation time and id
// break ties between equal serial labels.
func SortAgendas(agendas []*Agenda) {
	sort.SliceStable(agendas, func(i, j int) bool {
		a, b := agendas[i], agendas[j]
		ra, rb := SerialRank(a.Serial), SerialRank(b.Serial)
		if ra != rb {
			return ra < rb
		}
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
		return a.ID < b.ID
	})
}

// LatestAgenda returns the most recent generation, or nil.
func LatestAgenda(agendas []*Agenda) *Agenda {
	if len(agendas) == 0 {
		return nil
	}
	sorted := append([]*Agenda(nil), agendas...)
	SortAgendas(sorted)
	return sorted[len(sorted)-1]
}

// LastNonDesign returns the most recent Approved or Closed agenda, or nil.
func LastNonDesign(agendas []*Agenda) *Agenda {
	var rest []*Agenda
	for _, a := range agendas {
		if !a.IsDesign() {
			rest = append(rest, a)
		}
	}
	return LatestAgenda(rest)
}

// DesignAgenda returns the meeting's draft agenda, or nil.
func DesignAgenda(agendas []*Agenda) *Agenda {
	var drafts []*Agenda
	for _, a := range agendas {
		if a.IsDesign() {
			drafts = append(drafts, a)
		}
	}
	return LatestAgenda(drafts)
}
