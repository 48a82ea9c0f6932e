package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/testutil"
	"github.com/alexanderramin/agendacycle/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproval_RemovesNewItemsThatAreNotOK(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	agenda := h.fx.Agenda(h.fx.Meeting(), domain.AgendaApproved)
	bad := h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK))
	good := h.fx.Item(agenda, testutil.WithNumber(2), testutil.WithApproval(domain.ApprovalOK))
	unset := h.fx.Item(agenda, testutil.WithNumber(3))

	changes, err := a.Enforce(ctx, agenda.IRI)
	require.NoError(t, err)
	assert.Equal(t, 1, changes)

	assert.False(t, h.fx.Exists(bad.IRI))
	assert.True(t, h.fx.Exists(good.IRI))
	assert.True(t, h.fx.Exists(unset.IRI), "an item without an approval flag is left alone")
}

func TestApproval_RemoveKeepsSharedRecords(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	m := h.fx.Meeting()
	agenda := h.fx.Agenda(m, domain.AgendaApproved)
	bad := h.fx.Item(agenda, testutil.WithApproval(domain.ApprovalNotOK))
	other := h.fx.Item(agenda, testutil.WithApproval(domain.ApprovalOK))

	own, ownDecision, _ := h.fx.Treatment(bad)
	shared, _, _ := h.fx.Treatment(bad, other)
	request := h.fx.Request(m)
	ownActivity := h.fx.Activity(request, bad)
	sharedActivity := h.fx.Activity(request, bad, other)

	require.NoError(t, a.RemoveItems(ctx, []*domain.Item{bad}))

	assert.False(t, h.fx.Exists(bad.IRI))
	assert.False(t, h.fx.Exists(own))
	assert.False(t, h.fx.Exists(ownDecision))
	assert.False(t, h.fx.Exists(ownActivity))
	assert.True(t, h.fx.Has(shared, vocabulary.HasSubject, graph.IRI(other.IRI)))
	assert.True(t, h.fx.Has(sharedActivity, vocabulary.GeneratesItem, graph.IRI(other.IRI)))
}

func TestApproval_RemoveIsIdempotent(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	agenda := h.fx.Agenda(h.fx.Meeting(), domain.AgendaApproved)
	bad := h.fx.Item(agenda, testutil.WithApproval(domain.ApprovalNotOK))
	h.fx.Treatment(bad)

	require.NoError(t, a.RemoveItems(ctx, []*domain.Item{bad}))
	require.NoError(t, a.RemoveItems(ctx, []*domain.Item{bad}))
	assert.False(t, h.fx.Exists(bad.IRI))
}

func TestApproval_RollbackRestoresPredecessorContent(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	m := h.fx.Meeting()
	prevAgenda := h.fx.Agenda(m, domain.AgendaApproved)
	agenda := h.fx.Agenda(m, domain.AgendaApproved, testutil.WithPrevious(prevAgenda))
	prev := h.fx.Item(prevAgenda, testutil.WithNumber(4), testutil.WithApproval(domain.ApprovalOK),
		testutil.WithPayload(vocabulary.Title, graph.String("Original title")))
	item := h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK),
		testutil.RevisionOf(prev),
		testutil.WithPayload(vocabulary.Title, graph.String("Edited title")),
		testutil.WithPayload(vocabulary.DCT+"description", graph.String("added later")))
	oldTreatment, _, _ := h.fx.Treatment(prev)
	newTreatment, _, _ := h.fx.Treatment(item)
	request := h.fx.Request(m)
	activity := h.fx.Activity(request, item)

	changes, err := a.Enforce(ctx, agenda.IRI)
	require.NoError(t, err)
	assert.Equal(t, 1, changes)

	assert.Equal(t, h.content(t, prev.IRI, rollbackKeepOutgoing...), h.content(t, item.IRI, rollbackKeepOutgoing...))
	assert.True(t, h.fx.Has(item.IRI, vocabulary.Position, graph.Integer(1)), "sequence number is protected")
	assert.True(t, h.fx.Has(item.IRI, vocabulary.WasRevisionOf, graph.IRI(prev.IRI)))
	assert.True(t, h.fx.Has(agenda.IRI, vocabulary.HasPart, graph.IRI(item.IRI)))
	assert.True(t, h.fx.Has(activity, vocabulary.GeneratesItem, graph.IRI(item.IRI)))
	assert.True(t, h.fx.Has(oldTreatment, vocabulary.HasSubject, graph.IRI(item.IRI)))
	assert.False(t, h.fx.Has(newTreatment, vocabulary.HasSubject, graph.IRI(item.IRI)))

	got, err := h.repos.Items.Get(ctx, item.IRI)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalOK, got.Approval)
}

func TestApproval_RollbackKeepsNextGenerationLink(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	m := h.fx.Meeting()
	first := h.fx.Agenda(m, domain.AgendaApproved)
	second := h.fx.Agenda(m, domain.AgendaApproved, testutil.WithPrevious(first))
	third := h.fx.Agenda(m, domain.AgendaDesign, testutil.WithPrevious(second))
	prev := h.fx.Item(first, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalOK))
	item := h.fx.Item(second, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK), testutil.RevisionOf(prev))
	copyItem := h.fx.Item(third, testutil.WithNumber(1), testutil.RevisionOf(item))

	n, err := a.Rollback(ctx, []*domain.Item{item})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, h.fx.Has(copyItem.IRI, vocabulary.WasRevisionOf, graph.IRI(item.IRI)))
}

func TestApproval_RollbackThenResequenceHasNoDuplicates(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	s := NewSequencer(h.store, h.repos, h.cfg, nil)
	ctx := context.Background()

	m := h.fx.Meeting()
	prevAgenda := h.fx.Agenda(m, domain.AgendaApproved)
	agenda := h.fx.Agenda(m, domain.AgendaApproved, testutil.WithPrevious(prevAgenda))
	prevA := h.fx.Item(prevAgenda, testutil.WithNumber(2), testutil.WithApproval(domain.ApprovalOK))
	prevB := h.fx.Item(prevAgenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalOK))
	// Siblings swapped places on the newer agenda.
	h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK), testutil.RevisionOf(prevA))
	h.fx.Item(agenda, testutil.WithNumber(2), testutil.WithApproval(domain.ApprovalOK), testutil.RevisionOf(prevB))

	changes, err := a.Enforce(ctx, agenda.IRI)
	require.NoError(t, err)
	require.Equal(t, 1, changes)
	_, err = s.Resequence(ctx, agenda.IRI, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, numbers(h.items(t, agenda.IRI), domain.CategoryNote))
}

func TestApproval_RollbackSkipsVanishedPredecessor(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)

	agenda := h.fx.Agenda(h.fx.Meeting(), domain.AgendaApproved)
	item := h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK),
		testutil.WithPayload(vocabulary.Title, graph.String("kept")))
	item.Previous = vocabulary.ItemBase + "gone"

	n, err := a.Rollback(context.Background(), []*domain.Item{item})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, h.fx.Has(item.IRI, vocabulary.Title, graph.String("kept")))
}

func TestApproval_EnforceDoesNotCountSkippedRollback(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)

	agenda := h.fx.Agenda(h.fx.Meeting(), domain.AgendaApproved)
	h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK),
		testutil.RevisionOf(&domain.Item{IRI: vocabulary.ItemBase + "gone"}))

	changes, err := a.Enforce(context.Background(), agenda.IRI)
	require.NoError(t, err)
	assert.Zero(t, changes)
}

func TestApproval_RollbackFailureIsRetried(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	m := h.fx.Meeting()
	prevAgenda := h.fx.Agenda(m, domain.AgendaApproved)
	agenda := h.fx.Agenda(m, domain.AgendaApproved, testutil.WithPrevious(prevAgenda))
	prev := h.fx.Item(prevAgenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalOK),
		testutil.WithPayload(vocabulary.Title, graph.String("Original title")))
	item := h.fx.Item(agenda, testutil.WithNumber(1), testutil.WithApproval(domain.ApprovalNotOK),
		testutil.RevisionOf(prev),
		testutil.WithPayload(vocabulary.Title, graph.String("Edited title")))

	failing := &testutil.FailOnNthMutateStore{Store: h.store, FailOn: 1, Err: domain.ErrStoreFailure}
	_, err := NewApproval(failing, NewGraphRepos(failing), nil).Enforce(ctx, agenda.IRI)
	require.ErrorIs(t, err, domain.ErrStoreFailure)

	// The failed write left the item untouched and still selectable.
	assert.True(t, h.fx.Has(item.IRI, vocabulary.Title, graph.String("Edited title")))
	a := NewApproval(h.store, h.repos, nil)
	recurring, err := a.SelectRecurringNotOK(ctx, agenda.IRI)
	require.NoError(t, err)
	require.Len(t, recurring, 1)

	changes, err := a.Enforce(ctx, agenda.IRI)
	require.NoError(t, err)
	assert.Equal(t, 1, changes)
	assert.Equal(t, h.content(t, prev.IRI, rollbackKeepOutgoing...), h.content(t, item.IRI, rollbackKeepOutgoing...))
	assert.True(t, h.fx.Has(item.IRI, vocabulary.Title, graph.String("Original title")))
}

func TestApproval_SelectsByProvenance(t *testing.T) {
	h := newHarness(t)
	a := NewApproval(h.store, h.repos, nil)
	ctx := context.Background()

	m := h.fx.Meeting()
	prevAgenda := h.fx.Agenda(m, domain.AgendaApproved)
	agenda := h.fx.Agenda(m, domain.AgendaDesign)
	prev := h.fx.Item(prevAgenda)
	fresh := h.fx.Item(agenda, testutil.WithApproval(domain.ApprovalNotOK))
	recurring := h.fx.Item(agenda, testutil.WithApproval(domain.ApprovalNotOK), testutil.RevisionOf(prev))

	got, err := a.SelectNewNotOK(ctx, agenda.IRI)
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.IRI}, itemIRIs(got))

	got, err = a.SelectRecurringNotOK(ctx, agenda.IRI)
	require.NoError(t, err)
	assert.Equal(t, []string{recurring.IRI}, itemIRIs(got))
}
