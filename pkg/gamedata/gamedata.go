// Package gamedata loads the table of synchronized registries sent
// to clients during the configuration state.
package gamedata

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/Tnze/go-mc/nbt"
	"go.minekube.com/common/minecraft/key"
	"gopkg.in/yaml.v3"

	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/util"
)

//go:embed default.yml
var defaultTable []byte

// Table is an ordered list of registries.
type Table struct {
	Registries []Registry
}

// Registry is a registry with its entries in network id order.
type Registry struct {
	ID      key.Key
	Entries []Entry
}

// Entry is a registry entry. Data is absent when the
// client takes the entry from a known pack.
type Entry struct {
	ID   key.Key
	Data util.Optional[nbt.RawMessage]
}

// Default returns the table embedded into the binary.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded game data: %v", err))
	}
	return t
}

// Load reads the table from the YAML or JSON file at path.
// An empty path returns the Default table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading game data: %w", err)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("error parsing game data %q: %w", path, err)
	}
	return t, nil
}

// Parse parses a YAML or JSON document mapping registry ids to
// mappings of entry ids to entry data. A null entry has no data.
func Parse(b []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty game data")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeErr(root, "expected mapping of registries")
	}

	t := &Table{Registries: make([]Registry, 0, len(root.Content)/2)}
	seen := map[string]bool{}
	for i := 0; i < len(root.Content); i += 2 {
		id, err := parseKey(root.Content[i])
		if err != nil {
			return nil, err
		}
		if seen[id.String()] {
			return nil, nodeErr(root.Content[i], "duplicate registry %s", id)
		}
		seen[id.String()] = true
		r, err := parseRegistry(id, root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("registry %s: %w", id, err)
		}
		t.Registries = append(t.Registries, r)
	}
	return t, nil
}

func parseRegistry(id key.Key, n *yaml.Node) (Registry, error) {
	r := Registry{ID: id}
	if n.Kind != yaml.MappingNode {
		return r, nodeErr(n, "expected mapping of entries")
	}
	seen := map[string]bool{}
	for i := 0; i < len(n.Content); i += 2 {
		entryID, err := parseKey(n.Content[i])
		if err != nil {
			return r, err
		}
		if seen[entryID.String()] {
			return r, nodeErr(n.Content[i], "duplicate entry %s", entryID)
		}
		seen[entryID.String()] = true

		e := Entry{ID: entryID}
		if data := n.Content[i+1]; !isNull(data) {
			if data.Kind != yaml.MappingNode {
				return r, nodeErr(data, "entry %s: data must be a mapping", entryID)
			}
			v, err := toNBT(data)
			if err != nil {
				return r, fmt.Errorf("entry %s: %w", entryID, err)
			}
			m, err := util.MarshalNBT(v)
			if err != nil {
				return r, fmt.Errorf("entry %s: error encoding binary tag: %w", entryID, err)
			}
			e.Data = util.Some(m)
		}
		r.Entries = append(r.Entries, e)
	}
	return r, nil
}

func parseKey(n *yaml.Node) (key.Key, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, nodeErr(n, "expected identifier")
	}
	k, err := util.ParseKey(n.Value)
	if err != nil {
		return nil, nodeErr(n, "%v", err)
	}
	return k, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// toNBT converts a node into a value the binary tag encoder maps to
// the matching tag type.
func toNBT(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return toNBT(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, nodeErr(k, "compound keys must be scalars")
			}
			v, err := toNBT(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.Value, err)
			}
			m[k.Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		return toList(n)
	case yaml.ScalarNode:
		return toScalar(n)
	}
	return nil, nodeErr(n, "unsupported node")
}

func toScalar(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		if b {
			return int8(1), nil
		}
		return int8(0), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, nodeErr(n, "invalid integer %q", n.Value)
		}
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i), nil
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!str":
		return n.Value, nil
	case "!!null":
		return nil, nodeErr(n, "null is only allowed as entry data")
	}
	return nil, nodeErr(n, "unsupported value of type %s", n.Tag)
}

// toList converts a sequence into a homogeneous list.
// Integer sequences become int arrays, or long arrays if any element needs 64 bits.
func toList(n *yaml.Node) (any, error) {
	elems := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := toNBT(c)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if len(elems) == 0 {
		return []string{}, nil
	}
	switch elems[0].(type) {
	case string:
		return listOf[string](n, elems)
	case int8:
		return listOf[int8](n, elems)
	case float64:
		return listOf[float64](n, elems)
	case map[string]any:
		return listOf[map[string]any](n, elems)
	case int32, int64:
		longs := make([]int64, len(elems))
		wide := false
		for i, e := range elems {
			switch v := e.(type) {
			case int32:
				longs[i] = int64(v)
			case int64:
				longs[i] = v
				wide = true
			default:
				return nil, nodeErr(n, "mixed list element types")
			}
		}
		if wide {
			return longs, nil
		}
		ints := make([]int32, len(longs))
		for i, v := range longs {
			ints[i] = int32(v)
		}
		return ints, nil
	}
	return nil, nodeErr(n, "unsupported list element type %T", elems[0])
}

func listOf[T any](n *yaml.Node, elems []any) ([]T, error) {
	out := make([]T, len(elems))
	for i, e := range elems {
		v, ok := e.(T)
		if !ok {
			return nil, nodeErr(n, "mixed list element types")
		}
		out[i] = v
	}
	return out, nil
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// Registry returns the registry with the given id.
func (t *Table) Registry(id string) (*Registry, bool) {
	for i := range t.Registries {
		if t.Registries[i].ID.String() == id {
			return &t.Registries[i], true
		}
	}
	return nil, false
}

// Index returns the network id of an entry in a registry.
func (t *Table) Index(registry, entry string) (int, bool) {
	r, ok := t.Registry(registry)
	if !ok {
		return 0, false
	}
	for i, e := range r.Entries {
		if e.ID.String() == entry {
			return i, true
		}
	}
	return 0, false
}

// Packets returns one RegistryData packet per registry.
func (t *Table) Packets() []*packet.RegistryData {
	packets := make([]*packet.RegistryData, 0, len(t.Registries))
	for _, r := range t.Registries {
		p := &packet.RegistryData{Registry: r.ID, Entries: make([]packet.RegistryEntry, len(r.Entries))}
		for i, e := range r.Entries {
			p.Entries[i] = packet.RegistryEntry{ID: e.ID, Data: e.Data}
		}
		packets = append(packets, p)
	}
	return packets
}
