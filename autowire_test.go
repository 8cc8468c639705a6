package canister

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Autowire test fixtures.

type Mailer struct {
	Tag string
}

func NewMailer() *Mailer {
	return &Mailer{Tag: "fresh"}
}

type Service struct {
	Mailer *Mailer
	DB     Pinger
	Name   string
}

func NewService(mailer *Mailer, db Pinger, name string) *Service {
	return &Service{Mailer: mailer, DB: db, Name: name}
}

type SMTPMailer struct {
	DSN string
}

func NewSMTPMailer(dsn string) *SMTPMailer {
	return &SMTPMailer{DSN: dsn}
}

type Notifier struct {
	Mailer *SMTPMailer
}

func NewNotifier(mailer *SMTPMailer) *Notifier {
	return &Notifier{Mailer: mailer}
}

type Sink struct {
	Opts Args
}

func NewSink(opts Args) *Sink {
	return &Sink{Opts: opts}
}

type Pool struct {
	Names []string
}

func NewPool(names ...string) *Pool {
	return &Pool{Names: names}
}

type Holder struct {
	Value any
}

func NewHolder(value any) *Holder {
	return &Holder{Value: value}
}

type RingA struct {
	B *RingB
}

func NewRingA(b *RingB) *RingA {
	return &RingA{B: b}
}

type RingB struct {
	A *RingA
}

func NewRingB(a *RingA) *RingB {
	return &RingB{A: a}
}

// newAutowireContainer registers the standard fixture set: the "db"
// interface plus the mailer and service types.
func newAutowireContainer(t *testing.T, opts ...Option) (Container, *TypeRegistry) {
	t.Helper()

	c, reg := newTestContainer(t, opts...)

	require.NoError(t, Declare[Pinger](reg, "db"))
	require.NoError(t, reg.RegisterType("mailer", NewMailer))
	require.NoError(t, reg.RegisterType("service", NewService, "mailer", "db", "name"))

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	return c, reg
}

func TestAutowire_ResolvesAllParameterSources(t *testing.T) {
	c, _ := newAutowireContainer(t)

	instance, err := c.Autowire("service", Args{"name": "orders"})
	require.NoError(t, err)

	svc, ok := instance.(*Service)
	require.True(t, ok)

	// Concrete dependency is constructed fresh.
	assert.Equal(t, "fresh", svc.Mailer.Tag)

	// Interface dependency is the container's shared instance.
	shared, err := c.Instance("db")
	require.NoError(t, err)
	assert.Same(t, shared, svc.DB)

	// Literal argument is used verbatim.
	assert.Equal(t, "orders", svc.Name)
}

func TestAutowire_FreshConcreteDependencyPerCall(t *testing.T) {
	c, _ := newAutowireContainer(t)

	first, err := c.Autowire("service", Args{"name": "a"})
	require.NoError(t, err)

	second, err := c.Autowire("service", Args{"name": "b"})
	require.NoError(t, err)

	assert.NotSame(t, first.(*Service).Mailer, second.(*Service).Mailer)
	assert.Same(t, first.(*Service).DB, second.(*Service).DB)
}

func TestAutowire_MissingLiteralArgument(t *testing.T) {
	c, _ := newAutowireContainer(t)

	_, err := c.Autowire("service", Args{})

	assert.ErrorIs(t, err, ErrAutowireUnresolvable("", "", ""))
	assert.Contains(t, err.Error(), "'name'")
	assert.Contains(t, err.Error(), "'string'")
}

func TestAutowire_UnknownType(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := c.Autowire("ghost", nil)

	assert.ErrorIs(t, err, ErrAutowireTypeNotFound("ghost"))
	assert.True(t, IsAutowireError(err))
}

func TestAutowire_EmptyTypeName(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := c.Autowire("  ", nil)

	assert.ErrorIs(t, err, ErrInvalidIdentifier("Autowire"))
}

func TestAutowire_RegisteredInterfaceTakesPrecedence(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("mailer", NewMailer))

	pinned := &Mailer{Tag: "pinned"}
	require.NoError(t, c.AddInterface("mailer", func(c Container) (any, error) {
		return pinned, nil
	}))

	// Arguments are ignored when the identifier is a registered interface.
	instance, err := c.Autowire("mailer", Args{"anything": 1})
	require.NoError(t, err)
	assert.Same(t, pinned, instance)

	again, err := c.Autowire("mailer", nil)
	require.NoError(t, err)
	assert.Same(t, pinned, again)
}

func TestAutowire_NoParameterConstructor(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("mailer", NewMailer))

	instance, err := c.Autowire("mailer", Args{"ignored": true})
	require.NoError(t, err)
	assert.IsType(t, &Mailer{}, instance)
}

func TestAutowire_VariadicParameter(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("pool", NewPool, "names"))

	_, err := c.Autowire("pool", Args{"names": []string{"a"}})

	assert.ErrorIs(t, err, ErrAutowireVariadic("", ""))
	assert.Contains(t, err.Error(), "'names'")
}

func TestAutowire_UntypedParameter(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("holder", NewHolder, "value"))

	_, err := c.Autowire("holder", Args{"value": 1})

	assert.ErrorIs(t, err, ErrAutowireUntyped("", ""))
}

func TestAutowire_MapParameterUsedVerbatim(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("sink", NewSink, "opts"))

	opts := Args{"retries": 3}

	instance, err := c.Autowire("sink", Args{"opts": opts})
	require.NoError(t, err)
	assert.Equal(t, opts, instance.(*Sink).Opts)
}

func TestAutowire_NestedArgumentsForConcreteDependency(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("smtp", NewSMTPMailer, "dsn"))
	require.NoError(t, reg.RegisterType("notifier", NewNotifier, "mailer"))

	instance, err := c.Autowire("notifier", Args{"mailer": Args{"dsn": "smtp://mail"}})
	require.NoError(t, err)
	assert.Equal(t, "smtp://mail", instance.(*Notifier).Mailer.DSN)
}

func TestAutowire_NestedDependencyMissingArgument(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("smtp", NewSMTPMailer, "dsn"))
	require.NoError(t, reg.RegisterType("notifier", NewNotifier, "mailer"))

	_, err := c.Autowire("notifier", nil)

	assert.ErrorIs(t, err, ErrAutowireUnresolvable("", "", ""))
	assert.Contains(t, err.Error(), "'dsn'")
}

func TestAutowire_CycleDetection(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("ring-a", NewRingA, "b"))
	require.NoError(t, reg.RegisterType("ring-b", NewRingB, "a"))

	_, err := c.Autowire("ring-a", nil)

	assert.ErrorIs(t, err, ErrAutowireCycle(nil))
	assert.Contains(t, err.Error(), "ring-a -> ring-b -> ring-a")
}

func TestAutowire_ArgumentMapperDefaults(t *testing.T) {
	mapper, err := NewArgumentMapper(map[string]any{
		"service": Args{"name": "default"},
	})
	require.NoError(t, err)

	c, _ := newAutowireContainer(t, WithArgumentMapper(mapper))

	instance, err := c.Autowire("service", Args{})
	require.NoError(t, err)
	assert.Equal(t, "default", instance.(*Service).Name)
}

func TestAutowire_CallerArgumentsWinOverDefaults(t *testing.T) {
	mapper, err := NewArgumentMapper(map[string]any{
		"service": Args{"name": "default"},
	})
	require.NoError(t, err)

	c, _ := newAutowireContainer(t, WithArgumentMapper(mapper))

	instance, err := c.Autowire("service", Args{"name": "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", instance.(*Service).Name)
}

func TestAutowire_MapperAppliesToNestedConstruction(t *testing.T) {
	mapper, err := NewArgumentMapper(map[string]any{
		"smtp": Args{"dsn": "smtp://default"},
	})
	require.NoError(t, err)

	c, reg := newTestContainer(t, WithArgumentMapper(mapper))
	require.NoError(t, reg.RegisterType("smtp", NewSMTPMailer, "dsn"))
	require.NoError(t, reg.RegisterType("notifier", NewNotifier, "mailer"))

	instance, err := c.Autowire("notifier", nil)
	require.NoError(t, err)
	assert.Equal(t, "smtp://default", instance.(*Notifier).Mailer.DSN)
}

func TestAutowire_ConstructorErrorPropagates(t *testing.T) {
	boom := errors.New("dial failed")

	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("flaky", func() (*Mailer, error) {
		return nil, boom
	}))

	_, err := c.Autowire("flaky", nil)

	assert.ErrorIs(t, err, boom)
}

func TestAutowire_AutoInterfaceSpecScenario(t *testing.T) {
	c, _ := newAutowireContainer(t)

	require.NoError(t, c.AddAutoInterface("orders", "service", Args{"name": "orders"}))

	instance, err := c.Instance("orders")
	require.NoError(t, err)

	svc := instance.(*Service)
	assert.Equal(t, "orders", svc.Name)

	shared, err := c.Instance("db")
	require.NoError(t, err)
	assert.Same(t, shared, svc.DB)
}

func TestValidate_Success(t *testing.T) {
	c, _ := newAutowireContainer(t)

	require.NoError(t, c.AddAutoInterface("orders", "service", Args{"name": "orders"}))

	assert.NoError(t, c.Validate())
}

func TestValidate_ReportsUnresolvableParameter(t *testing.T) {
	c, _ := newAutowireContainer(t)

	require.NoError(t, c.AddAutoInterface("orders", "service", nil))

	err := c.Validate()

	assert.ErrorIs(t, err, ErrAutowireUnresolvable("", "", ""))
}

func TestValidate_SharedDependencyCheckedPerPath(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("smtp", NewSMTPMailer, "dsn"))
	require.NoError(t, reg.RegisterType("notifier", NewNotifier, "mailer"))

	// The first registration supplies the nested dsn, the second does not.
	// Validation must not let the satisfied path mask the unsatisfied one.
	require.NoError(t, c.AddAutoInterface("n1", "notifier", Args{"mailer": Args{"dsn": "smtp://mail"}}))
	require.NoError(t, c.AddAutoInterface("n2", "notifier", nil))

	err := c.Validate()

	assert.ErrorIs(t, err, ErrAutowireUnresolvable("", "", ""))
	assert.Contains(t, err.Error(), "'dsn'")
}

func TestValidate_ReportsCycle(t *testing.T) {
	c, reg := newTestContainer(t)
	require.NoError(t, reg.RegisterType("ring-a", NewRingA, "b"))
	require.NoError(t, reg.RegisterType("ring-b", NewRingB, "a"))

	require.NoError(t, c.AddAutoInterface("ring", "ring-a", nil))

	err := c.Validate()

	assert.ErrorIs(t, err, ErrAutowireCycle(nil))
}

func TestValidate_ReportsUnknownTarget(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddAutoInterface("svc", "ghost", nil))

	err := c.Validate()

	assert.ErrorIs(t, err, ErrAutowireTypeNotFound("ghost"))
}

func TestValidate_NothingToValidate(t *testing.T) {
	c, _ := newTestContainer(t)

	require.NoError(t, c.AddInterface("db", func(c Container) (any, error) {
		return &fakeDB{}, nil
	}))

	assert.NoError(t, c.Validate())
}
