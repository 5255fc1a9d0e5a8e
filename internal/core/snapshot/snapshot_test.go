package snapshot

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/list"
)

func ptr[T any](v T) *T { return &v }

func TestSerialize_EmptyStore(t *testing.T) {
	s := Build(nil, nil)
	assert.Equal(t, EmptyRoot, s.Serialize())

	var nilSnap *Snapshot
	assert.Equal(t, EmptyRoot, nilSnap.Serialize())
}

func TestSerialize_DanglingTodoOmitted(t *testing.T) {
	s := Build(
		[]list.List{{ID: "L1", Name: "Groceries"}},
		[]list.Todo{
			{ID: "T1", ListID: "L1", Text: "milk"},
			{ID: "T2", ListID: "L9", Text: "orphan"},
		},
	)

	out := s.Serialize()
	assert.NotContains(t, out, "orphan")
	assert.NotContains(t, out, `id="T2"`)

	// still present in the snapshot itself
	_, ok := s.Todo("T2")
	assert.True(t, ok)
}

func TestSerialize_OnlyDanglingTodos(t *testing.T) {
	s := Build(nil, []list.Todo{{ID: "T1", ListID: "L9", Text: "x"}})
	assert.Equal(t, EmptyRoot, s.Serialize())
}

func TestSerialize_Format(t *testing.T) {
	s := Build(
		[]list.List{
			{ID: "L2", Name: "Books", Type: "reading", Description: "a very long free text description"},
			{ID: "L1", Name: "Groceries", Purpose: "weekly shop", BackgroundColour: "#fff", Icon: "cart"},
		},
		[]list.Todo{
			{ID: "T2", ListID: "L1", Text: "eggs", Done: true, Amount: ptr(2.5)},
			{ID: "T1", ListID: "L1", Text: "milk", Category: "dairy", Rating: ptr(4)},
			{ID: "T3", ListID: "L2", Text: "Dune", Number: ptr(412.0), Date: "2026-10-14"},
		},
	)

	want := `<context>` +
		`<list id="L1"><name>Groceries</name><purpose>weekly shop</purpose><backgroundColour>#fff</backgroundColour><icon>cart</icon>` +
		`<todo id="T1"><text>milk</text><done>false</done><category>dairy</category><rating>4</rating></todo>` +
		`<todo id="T2"><text>eggs</text><done>true</done><amount>2.5</amount></todo>` +
		`</list>` +
		`<list id="L2"><name>Books</name><type>reading</type>` +
		`<todo id="T3"><text>Dune</text><done>false</done><date>2026-10-14</date><number>412</number></todo>` +
		`</list>` +
		`</context>`

	if diff := cmp.Diff(want, s.Serialize()); diff != "" {
		t.Errorf("Serialize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_EscapesMarkup(t *testing.T) {
	nasty := `Tom & Jerry's <b>"best"</b> > rest`
	s := Build(
		[]list.List{{ID: `L"1`, Name: nasty, Purpose: nasty}},
		[]list.Todo{{ID: "T<1>", ListID: `L"1`, Text: nasty, Notes: nasty, Address: nasty}},
	)

	out := s.Serialize()

	bodies := regexp.MustCompile(`>([^<]*)</`).FindAllStringSubmatch(out, -1)
	require.NotEmpty(t, bodies)
	entity := regexp.MustCompile(`&(amp|lt|gt|apos|quot);`)
	for _, m := range bodies {
		body := m[1]
		assert.NotContains(t, body, ">")
		assert.NotContains(t, body, "'")
		assert.NotContains(t, body, `"`)
		assert.NotContains(t, entity.ReplaceAllString(body, ""), "&", "unescaped ampersand in %q", body)
	}

	assert.Contains(t, out, `<list id="L&quot;1">`)
	assert.Contains(t, out, `<todo id="T&lt;1&gt;">`)
	assert.Contains(t, out, "Tom &amp; Jerry&apos;s &lt;b&gt;&quot;best&quot;&lt;/b&gt; &gt; rest")
}

func TestSerialize_Idempotent(t *testing.T) {
	lists := []list.List{{ID: "L1", Name: "A"}, {ID: "L2", Name: "B"}, {ID: "L3", Name: "C"}}
	var todos []list.Todo
	for i, id := range []string{"T5", "T1", "T4", "T2", "T3"} {
		todos = append(todos, list.Todo{ID: id, ListID: lists[i%3].ID, Text: strings.Repeat("x", i+1)})
	}

	first := Build(lists, todos).Serialize()
	for range 10 {
		assert.Equal(t, first, Build(lists, todos).Serialize())
	}
}

func TestBuild_CopiesPointers(t *testing.T) {
	n := 3.0
	todos := []list.Todo{{ID: "T1", ListID: "L1", Text: "x", Number: &n}}
	s := Build([]list.List{{ID: "L1"}}, todos)

	n = 99
	got, _ := s.Todo("T1")
	assert.InDelta(t, 3.0, *got.Number, 0.0001)
}

func TestSnapshot_Lookups(t *testing.T) {
	now := time.Now()
	s := Build(
		[]list.List{{ID: "L1", Name: "Groceries"}, {ID: "L2", Name: "Chores"}},
		[]list.Todo{
			{ID: "T1", ListID: "L1", Text: "old", CreatedAt: now.Add(-time.Hour)},
			{ID: "T2", ListID: "L1", Text: "new", CreatedAt: now},
			{ID: "T3", ListID: "L1", Text: "mid", CreatedAt: now.Add(-time.Minute)},
			{ID: "T4", ListID: "L2", Text: "sweep"},
		},
	)

	l, ok := s.ListByName("groceries")
	require.True(t, ok)
	assert.Equal(t, "L1", l.ID)

	_, ok = s.ListByName("nope")
	assert.False(t, ok)

	sample := s.Sample("L1", 2)
	require.Len(t, sample, 2)
	assert.Equal(t, "T2", sample[0].ID)
	assert.Equal(t, "T3", sample[1].ID)

	assert.Len(t, s.TodosFor("L2"), 1)
	assert.Empty(t, s.TodosFor("L9"))

	_, ok = s.List("")
	assert.False(t, ok)
}
