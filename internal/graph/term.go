package graph

import (
	"strconv"
	"time"
)

// TermKind distinguishes resource identifiers from literal values.
type TermKind string

const (
	KindIRI     TermKind = "iri"
	KindLiteral TermKind = "literal"
)

// XML Schema datatypes used for typed literals.
const (
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
)

// Term is the object position of a fact.
type Term struct {
	Kind     TermKind `json:"type"`
	Value    string   `json:"value"`
	Datatype string   `json:"datatype,omitempty"`
}

func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// String is a plain literal.
func String(v string) Term { return Term{Kind: KindLiteral, Value: v} }

func Integer(n int) Term {
	return Term{Kind: KindLiteral, Value: strconv.Itoa(n), Datatype: XSDInteger}
}

func Boolean(b bool) Term {
	return Term{Kind: KindLiteral, Value: strconv.FormatBool(b), Datatype: XSDBoolean}
}

// DateTime stores the instant in UTC with nanosecond precision so values
// written within the same second still order correctly.
func DateTime(t time.Time) Term {
	return Term{Kind: KindLiteral, Value: t.UTC().Format(time.RFC3339Nano), Datatype: XSDDateTime}
}

func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// Int decodes an integer literal. Plain literals holding digits are accepted.
func (t Term) Int() (int, bool) {
	if t.Kind != KindLiteral {
		return 0, false
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (t Term) Bool() (bool, bool) {
	if t.Kind != KindLiteral {
		return false, false
	}
	switch t.Value {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

func (t Term) Time() (time.Time, bool) {
	if t.Kind != KindLiteral {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if v, err := time.Parse(layout, t.Value); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}
