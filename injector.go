package bankconsole

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// Builder is a function that expects anything and retuns
// the type that builds. The type cant be func() interface{}
// cause some errors appears in runtime. So it's represented
// as an interface.
type Builder interface{}

// Injector detects which builder to call using its return type. Builder
// parameters are fulfilled by calling the builders of their types.
type Injector struct {
	builders map[reflect.Type]Builder
}

func NewInjector() *Injector {
	return &Injector{
		builders: make(map[reflect.Type]Builder),
	}
}

// Add a builder to the dependency injector.
func (injector *Injector) Add(builder Builder) {
	t := reflect.TypeOf(builder)
	if t == nil || t.Kind() != reflect.Func || t.NumOut() == 0 {
		panic(fmt.Sprintf("builder must be a function returning a value, got %v", t))
	}
	injector.builders[t.Out(0)] = builder
}

func (injector *Injector) ShowAvailableBuilders(log zerolog.Logger) {
	for k := range injector.builders {
		log.Debug().Str("type", k.String()).Msg("builder available")
	}
}

// Get returns a built dependency of the type of name.
func (injector *Injector) Get(name interface{}) interface{} {
	return injector.GetByType(reflect.TypeOf(name))
}

// GetByType returns a built dependency identified by type. It panics when
// no builder provides it.
func (injector *Injector) GetByType(name reflect.Type) interface{} {
	dependencyBuilder := injector.builders[name]
	if dependencyBuilder == nil {
		panic(fmt.Sprintf("builder not found for type %s", name))
	}
	return injector.CallBuilder(dependencyBuilder)
}

// ResolveHandler calls a handler builder. A plain Handler is accepted too.
func (injector *Injector) ResolveHandler(builder Builder) Handler {
	switch h := builder.(type) {
	case Handler:
		return h
	case func(*Context) error:
		return h
	}
	return injector.CallBuilder(builder).(Handler)
}

// CallBuilder injects all parameters with provided builders. If some
// parameter type cannot be found, it will panic.
func (injector *Injector) CallBuilder(builder Builder) interface{} {
	var inputs []reflect.Value
	builderType := reflect.TypeOf(builder)
	for i := 0; i < builderType.NumIn(); i++ {
		impl := injector.GetByType(builderType.In(i))
		inputs = append(inputs, reflect.ValueOf(impl))
	}
	builded := reflect.ValueOf(builder).Call(inputs)
	if len(builded) == 0 {
		return nil
	}
	return builded[0].Interface()
}

// PopulateStruct fills the exported fields of the struct pointed by
// userStruct with the implementations the injector can create.
func (injector *Injector) PopulateStruct(userStruct interface{}) {
	structValue := reflect.ValueOf(userStruct).Elem()
	if structValue.Kind() != reflect.Struct {
		panic("value passed to PopulateStruct is not a struct")
	}
	for i := 0; i < structValue.NumField(); i++ {
		field := structValue.Field(i)
		if field.IsValid() && field.CanSet() {
			impl := injector.GetByType(field.Type())
			field.Set(reflect.ValueOf(impl))
		}
	}
}
