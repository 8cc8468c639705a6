package canister

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Typed(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	db, err := Resolve[Pinger](c, "db")
	require.NoError(t, err)
	assert.Equal(t, "pong", db.Ping())
}

func TestResolve_WrongType(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	_, err := Resolve[*Mailer](c, "db")

	assert.ErrorIs(t, err, ErrTypeMismatch("db", nil))
}

func TestResolve_NotRegistered(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := Resolve[Pinger](c, "ghost")

	assert.ErrorIs(t, err, ErrNotRegistered("ghost"))
}

func TestMust_PanicsOnError(t *testing.T) {
	c, _ := newTestContainer(t)

	assert.Panics(t, func() {
		Must[Pinger](c, "ghost")
	})
}

func TestMust_ReturnsInstance(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	db := Must[Pinger](c, "db")
	assert.Equal(t, "pong", db.Ping())
}

func TestBuild_FreshTypedInstance(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	first, err := Build[*fakeDB](c, "db")
	require.NoError(t, err)

	second, err := Build[*fakeDB](c, "db")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestWire_TypedAutowire(t *testing.T) {
	c, _ := newAutowireContainer(t)

	svc, err := Wire[*Service](c, "service", Args{"name": "orders"})
	require.NoError(t, err)
	assert.Equal(t, "orders", svc.Name)

	_, err = Wire[*Mailer](c, "service", Args{"name": "orders"})
	assert.ErrorIs(t, err, ErrTypeMismatch("service", nil))
}

func TestAddValue_SharedValue(t *testing.T) {
	c, _ := newTestContainer(t)
	db := &fakeDB{tag: "pinned"}

	require.NoError(t, AddValue(c, "db", db))

	instance, err := c.Instance("db")
	require.NoError(t, err)
	assert.Same(t, db, instance)

	fresh, err := c.NewInstance("db")
	require.NoError(t, err)
	assert.Same(t, db, fresh)
}

func TestAddTyped_Factory(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, AddTyped(c, "db", func(c Container) (*fakeDB, error) {
		return &fakeDB{tag: "typed"}, nil
	}))

	db, err := Resolve[*fakeDB](c, "db")
	require.NoError(t, err)
	assert.Equal(t, "typed", db.tag)
}

func TestInterfaceKey_RoundTrip(t *testing.T) {
	c, _ := newTestContainer(t)
	key := NewInterfaceKey[*fakeDB]("db")

	assert.Equal(t, "db", key.ID())
	assert.False(t, HasKey(c, key))

	require.NoError(t, AddWithKey(c, key, func(c Container) (*fakeDB, error) {
		return &fakeDB{tag: "keyed"}, nil
	}))

	assert.True(t, HasKey(c, key))

	db, err := InstanceWithKey(c, key)
	require.NoError(t, err)
	assert.Equal(t, "keyed", db.tag)

	assert.Same(t, db, MustWithKey(c, key))

	info := InspectKey(c, key)
	assert.True(t, info.Registered)
	assert.True(t, info.Cached)
}
