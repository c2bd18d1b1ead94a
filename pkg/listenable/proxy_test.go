package listenable_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/listenable/pkg/listenable"
	"github.com/randalmurphal/listenable/pkg/listenable/event"
	"github.com/randalmurphal/listenable/pkg/listenable/policy"
	"github.com/randalmurphal/listenable/pkg/listenable/target"
)

// recorder collects every event dispatched by a proxy.
type recorder struct {
	events []listenable.Event
}

func (r *recorder) listen(evt listenable.Event) error {
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) types() []string {
	out := make([]string, len(r.events))
	for i, evt := range r.events {
		out[i] = evt.Type
	}
	return out
}

func (r *recorder) reset() {
	r.events = nil
}

func newRecorded(t *testing.T, tgt target.Target, opts ...listenable.Option) (*listenable.Proxy, *recorder) {
	t.Helper()
	p := listenable.New(tgt, opts...)
	rec := &recorder{}
	_, err := p.BindAll(rec.listen)
	require.NoError(t, err)
	return p, rec
}

func TestWrite_NewKey(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered())

	ok, err := p.Write("a", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{listenable.EventCreate, listenable.EventSet}, rec.types())
	for _, evt := range rec.events {
		assert.True(t, evt.Success)
		assert.Equal(t, "a", evt.Key)
		assert.Equal(t, 1, evt.Value)
		assert.False(t, evt.HadStartValue)
		assert.Nil(t, evt.StartValue)
	}

	assert.True(t, p.HasKey("a"))
	value, ok, err := p.Read("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestWrite_SameValue(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered(target.Pair{Key: "a", Value: 1}))

	ok, err := p.Write("a", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, []string{listenable.EventSet}, rec.types())
	assert.True(t, rec.events[0].Success)
}

func TestWrite_ChangedValue(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered(target.Pair{Key: "a", Value: 1}))

	ok, err := p.Write("a", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{listenable.EventUpdate, listenable.EventSet}, rec.types())
	for _, evt := range rec.events {
		assert.True(t, evt.Success)
		assert.Equal(t, 1, evt.StartValue)
		assert.True(t, evt.HadStartValue)
		assert.Equal(t, 2, evt.Value)
	}
}

func TestWrite_DerivedEventHasOwnID(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered())

	_, err := p.Write("a", 1)
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	assert.NotEmpty(t, rec.events[0].ID)
	assert.NotEqual(t, rec.events[0].ID, rec.events[1].ID)
	assert.Equal(t, rec.events[0].Timestamp, rec.events[1].Timestamp)
}

func TestWrite_NilValueIsPresence(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered())

	_, err := p.Write("a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{listenable.EventCreate, listenable.EventSet}, rec.types())
	assert.True(t, p.HasKey("a"))

	rec.reset()
	_, err = p.Write("a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{listenable.EventSet}, rec.types())
}

func TestWrite_SliceIdentity(t *testing.T) {
	shared := []int{1, 2}
	p, rec := newRecorded(t, target.Map{"a": shared})

	_, err := p.Write("a", shared)
	require.NoError(t, err)
	assert.Equal(t, []string{listenable.EventSet}, rec.types())

	rec.reset()
	_, err = p.Write("a", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{listenable.EventUpdate, listenable.EventSet}, rec.types())
}

func TestWrite_CustomEqual(t *testing.T) {
	p, rec := newRecorded(t, target.Map{"a": []int{1, 2}},
		listenable.WithEqual(func(a, b any) bool {
			return assert.ObjectsAreEqual(a, b)
		}),
	)

	_, err := p.Write("a", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{listenable.EventSet}, rec.types())
}

func TestListPolicy(t *testing.T) {
	tgt := target.NewOrdered()
	p, rec := newRecorded(t, tgt, listenable.WithPolicy(policy.AllowList("a")))

	ok, err := p.Write("b", 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.Equal(t, []string{listenable.EventSet}, rec.types())
	assert.False(t, rec.events[0].Success)
	assert.Equal(t, 5, rec.events[0].Value)
	assert.False(t, p.HasKey("b"))
	assert.False(t, tgt.Has("b"))

	rec.reset()
	value, ok, err := p.Read("b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	require.Equal(t, []string{listenable.EventGet}, rec.types())
	assert.False(t, rec.events[0].Success)

	rec.reset()
	ok, err = p.Write("a", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{listenable.EventCreate, listenable.EventSet}, rec.types())
}

func TestRead_DeniedHidesValue(t *testing.T) {
	p, rec := newRecorded(t, target.Map{"secret": "x"}, listenable.WithPolicy(policy.AllowList("public")))

	value, ok, err := p.Read("secret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Success)
	assert.True(t, p.HasKey("secret"))
}

func TestRead_AllowedMissingKey(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered())

	value, ok, err := p.Read("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)

	require.Len(t, rec.events, 1)
	assert.Equal(t, listenable.EventGet, rec.events[0].Type)
	assert.True(t, rec.events[0].Success)
}

func TestAllowExistingSnapshot(t *testing.T) {
	tgt := target.NewOrdered(target.Pair{Key: "a", Value: 1})
	p, rec := newRecorded(t, tgt, listenable.WithPolicy(policy.AllowExisting()))

	tgt.Set("b", 2)

	assert.True(t, p.IsKeyAllowed("a"))
	assert.False(t, p.IsKeyAllowed("b"))
	assert.Equal(t, []string{"a"}, p.Policy().Keys())

	ok, err := p.Write("b", 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, mustGet(t, tgt, "b"))

	ok, err = p.Write("a", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{listenable.EventSet, listenable.EventUpdate, listenable.EventSet}, rec.types())
}

func TestDelete(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		p, rec := newRecorded(t, target.NewOrdered())

		ok, err := p.Delete("missing")
		require.NoError(t, err)
		assert.False(t, ok)

		require.Equal(t, []string{listenable.EventDelete}, rec.types())
		assert.False(t, rec.events[0].Success)
	})

	t.Run("missing key with restrictive policy", func(t *testing.T) {
		p, rec := newRecorded(t, target.NewOrdered(), listenable.WithPolicy(policy.AllowList("a")))

		ok, err := p.Delete("missing")
		require.NoError(t, err)
		assert.False(t, ok)
		require.Len(t, rec.events, 1)
		assert.False(t, rec.events[0].Success)
	})

	t.Run("present key", func(t *testing.T) {
		p, rec := newRecorded(t, target.NewOrdered(target.Pair{Key: "a", Value: 1}))

		ok, err := p.Delete("a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, p.HasKey("a"))

		require.Len(t, rec.events, 1)
		assert.True(t, rec.events[0].Success)
		assert.Equal(t, 1, rec.events[0].Value)
	})

	t.Run("bypasses policy", func(t *testing.T) {
		p, rec := newRecorded(t, target.Map{"b": 1}, listenable.WithPolicy(policy.AllowList("a")))

		ok, err := p.Delete("b")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, p.HasKey("b"))
		assert.True(t, rec.events[0].Success)
	})

	t.Run("target refuses", func(t *testing.T) {
		p, rec := newRecorded(t, target.Seal(target.NewOrdered(target.Pair{Key: "a", Value: 1})))

		ok, err := p.Delete("a")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, p.HasKey("a"))
		require.Len(t, rec.events, 1)
		assert.False(t, rec.events[0].Success)
	})
}

func TestWrite_TargetRefusesNewKey(t *testing.T) {
	p, rec := newRecorded(t, target.Seal(target.NewOrdered(target.Pair{Key: "x", Value: 1})))

	ok, err := p.Write("y", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, p.HasKey("y"))

	require.Equal(t, []string{listenable.EventSet}, rec.types())
	assert.False(t, rec.events[0].Success)
	assert.Equal(t, 2, rec.events[0].Value)

	rec.reset()
	ok, err = p.Write("x", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{listenable.EventUpdate, listenable.EventSet}, rec.types())
}

func TestHasKeyAndListKeysDispatchNothing(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered(
		target.Pair{Key: "b", Value: 1},
		target.Pair{Key: "a", Value: 2},
	))

	assert.True(t, p.HasKey("a"))
	assert.False(t, p.HasKey("c"))
	assert.Equal(t, []string{"b", "a"}, p.ListKeys())
	assert.Empty(t, rec.events)
}

func TestProxySharesTarget(t *testing.T) {
	m := target.Map{}
	p := listenable.New(m)

	_, err := p.Write("a", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m["a"])

	m["b"] = 2
	value, ok, err := p.Read("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestBindSingleCategory(t *testing.T) {
	p := listenable.New(target.NewOrdered())

	var updates []listenable.Event
	sub, err := p.Bind(listenable.EventUpdate, func(evt listenable.Event) error {
		updates = append(updates, evt)
		return nil
	})
	require.NoError(t, err)

	_, _ = p.Write("a", 1)
	_, _ = p.Write("a", 2)
	assert.Len(t, updates, 1)

	require.NoError(t, p.UnbindFrom(listenable.EventUpdate, sub))
	_, _ = p.Write("a", 3)
	assert.Len(t, updates, 1)
}

func TestBindInvalid(t *testing.T) {
	p := listenable.New(target.NewOrdered())

	_, err := p.Bind("change", func(listenable.Event) error { return nil })
	require.ErrorIs(t, err, listenable.ErrInvalidCategory)

	var catErr *event.CategoryError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, listenable.Categories(), catErr.Allowed)

	_, err = p.Bind(listenable.EventGet, nil)
	assert.ErrorIs(t, err, listenable.ErrInvalidCallback)

	_, err = p.BindAll(nil)
	assert.ErrorIs(t, err, listenable.ErrInvalidCallback)
}

func TestUnbindAll(t *testing.T) {
	p, rec := newRecorded(t, target.NewOrdered())

	calls := 0
	sub, err := p.BindAll(func(listenable.Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	_, _ = p.Write("a", 1)
	assert.Equal(t, 2, calls)

	p.Unbind(sub)
	_, _ = p.Write("a", 2)
	_, _, _ = p.Read("a")
	_, _ = p.Delete("a")
	assert.Equal(t, 2, calls)
	assert.Len(t, rec.events, 6)
}

func TestListenerError(t *testing.T) {
	tgt := target.NewOrdered()
	p := listenable.New(tgt)
	boom := errors.New("boom")

	_, err := p.Bind(listenable.EventCreate, func(listenable.Event) error { return boom })
	require.NoError(t, err)

	setCalled := false
	_, err = p.Bind(listenable.EventSet, func(listenable.Event) error {
		setCalled = true
		return nil
	})
	require.NoError(t, err)

	ok, err := p.Write("a", 1)
	assert.True(t, ok)
	require.ErrorIs(t, err, boom)

	var lerr *event.ListenerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, listenable.EventCreate, lerr.Category)

	assert.False(t, setCalled)
	assert.True(t, tgt.Has("a"))
}

func TestListenerErrorStopsChain(t *testing.T) {
	p := listenable.New(target.NewOrdered())
	boom := errors.New("boom")

	var order []int
	_, err := p.Bind(listenable.EventGet, func(listenable.Event) error {
		order = append(order, 1)
		return boom
	})
	require.NoError(t, err)
	_, err = p.Bind(listenable.EventGet, func(listenable.Event) error {
		order = append(order, 2)
		return nil
	})
	require.NoError(t, err)

	_, _, err = p.Read("a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, order)
}

func TestListenerPanicPropagates(t *testing.T) {
	p := listenable.New(target.NewOrdered())
	_, err := p.Bind(listenable.EventDelete, func(listenable.Event) error { panic("listener panic") })
	require.NoError(t, err)

	assert.PanicsWithValue(t, "listener panic", func() {
		_, _ = p.Delete("a")
	})
}

func TestReentrantMutation(t *testing.T) {
	tgt := target.NewOrdered()
	p := listenable.New(tgt)

	_, err := p.Bind(listenable.EventCreate, func(evt listenable.Event) error {
		if evt.Key == "a" {
			_, err := p.Write("mirror", evt.Value)
			return err
		}
		return nil
	})
	require.NoError(t, err)

	var seen []string
	_, err = p.Bind(listenable.EventSet, func(evt listenable.Event) error {
		seen = append(seen, evt.Key)
		return nil
	})
	require.NoError(t, err)

	_, err = p.Write("a", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "mirror"}, tgt.Keys())
	assert.Equal(t, []string{"mirror", "a"}, seen)
}

func TestReentrantUnbind(t *testing.T) {
	p := listenable.New(target.NewOrdered())

	calls := 0
	var sub *event.Subscription
	sub, err := p.Bind(listenable.EventSet, func(listenable.Event) error {
		calls++
		p.Unbind(sub)
		return nil
	})
	require.NoError(t, err)

	_, _ = p.Write("a", 1)
	_, _ = p.Write("a", 2)
	assert.Equal(t, 1, calls)
}

func mustGet(t *testing.T, tgt target.Target, key string) any {
	t.Helper()
	v, ok := tgt.Get(key)
	require.True(t, ok, "key %q missing", key)
	return v
}
