package filter

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/logger"
)

// luaPredicate runs a compiled Lua function body against elements.
type luaPredicate struct {
	mu sync.Mutex
	L  *lua.LState
	fn *lua.LFunction
}

// Lua compiles body, the body of a Lua function receiving the element as
// `object` and returning a boolean, into a Custom filter. The object table
// holds id, type, tags, lat/lon (the centroid, when there is one),
// is_closed and node_count for ways, and members for relations.
//
//	return object.tags.amenity == "cafe" and object.lat > 56
//
// A script error counts as no match and is logged at debug level.
func Lua(name, body string) (Filter, error) {
	L := lua.NewState()
	if err := L.DoString("return function(object)\n" + body + "\nend"); err != nil {
		L.Close()
		return Filter{}, fmt.Errorf("lua %s: %w", name, err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		L.Close()
		return Filter{}, fmt.Errorf("lua %s: chunk did not compile to a function", name)
	}

	p := &luaPredicate{L: L, fn: fn}
	return Custom("lua:"+name, p.matches), nil
}

func (p *luaPredicate) matches(e element.Element) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.L.CallByParam(lua.P{
		Fn:      p.fn,
		NRet:    1,
		Protect: true,
	}, p.objectToLua(e)); err != nil {
		logger.Get().Debug("Lua filter failed", zap.Stringer("element", e.Key()), zap.Error(err))
		return false
	}
	ret := p.L.Get(-1)
	p.L.Pop(1)
	return lua.LVAsBool(ret)
}

// objectToLua converts an element to the table scripts see
func (p *luaPredicate) objectToLua(e element.Element) *lua.LTable {
	L := p.L
	tbl := L.NewTable()

	tbl.RawSetString("id", lua.LNumber(e.ID()))
	tbl.RawSetString("type", lua.LString(e.Type()))

	tags := L.NewTable()
	for _, t := range e.Tags() {
		tags.RawSetString(t.Key, lua.LString(t.Value))
	}
	tbl.RawSetString("tags", tags)

	if c, ok := e.Centroid(); ok {
		tbl.RawSetString("lat", lua.LNumber(c.Lat()))
		tbl.RawSetString("lon", lua.LNumber(c.Lon()))
	}

	switch v := e.(type) {
	case *element.Way:
		tbl.RawSetString("is_closed", lua.LBool(v.Closed()))
		tbl.RawSetString("node_count", lua.LNumber(len(v.Nodes())))
	case *element.Relation:
		members := L.NewTable()
		for i, m := range v.Members() {
			mt := L.NewTable()
			mt.RawSetString("type", lua.LString(m.Type))
			mt.RawSetString("ref", lua.LNumber(m.Ref))
			mt.RawSetString("role", lua.LString(m.Role))
			mt.RawSetString("resolved", lua.LBool(m.Resolved()))
			members.RawSetInt(i+1, mt)
		}
		tbl.RawSetString("members", members)
	}

	return tbl
}
