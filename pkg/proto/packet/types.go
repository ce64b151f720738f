// Package packet contains the packets of protocol 770 (Minecraft 1.21.5)
// exchanged with clients.
package packet

import (
	"io"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto/util"
)

// Protocol is the protocol version the packets implement.
const Protocol = 770

// MinecraftVersion is the game version of Protocol.
const MinecraftVersion = "1.21.5"

// MaxBitSetLongs bounds the length of a received BitSet.
const MaxBitSetLongs = 1024

var (
	readKeys  = util.PrefixedArrayReader(util.ReadKey)
	writeKeys = util.PrefixedArrayWriter(util.WriteKey)
)

// BitSet is a set of bits stored in longs, least significant bit first.
type BitSet []int64

// Set sets bit i, growing the set as needed.
func (b *BitSet) Set(i int) {
	for len(*b) <= i/64 {
		*b = append(*b, 0)
	}
	(*b)[i/64] |= 1 << (i % 64)
}

// Get reports whether bit i is set.
func (b BitSet) Get(i int) bool {
	return i/64 < len(b) && b[i/64]&(1<<(i%64)) != 0
}

func readBitSet(rd io.Reader) (BitSet, error) {
	return util.ReadLongArray(rd, MaxBitSetLongs)
}

func writeBitSet(wr io.Writer, b BitSet) error {
	return util.WriteLongArray(wr, b)
}

// Property is a signed or unsigned game profile property like textures.
type Property struct {
	Name      string
	Value     string
	Signature util.Optional[string]
}

func (p *Property) Fields() util.Schema {
	return util.Schema{
		util.F("name", &p.Name, util.StringReader(64), util.WriteString),
		util.F("value", &p.Value, util.ReadString, util.WriteString),
		util.F("signature", &p.Signature, util.OptionalReader(util.StringReader(1024)), util.OptionalWriter(util.WriteString)),
	}
}

// KnownPack identifies a data pack both sides may already have.
type KnownPack struct {
	Namespace string
	ID        string
	Version   string
}

func (k *KnownPack) Fields() util.Schema {
	return util.Schema{
		util.F("namespace", &k.Namespace, util.ReadString, util.WriteString),
		util.F("id", &k.ID, util.ReadString, util.WriteString),
		util.F("version", &k.Version, util.ReadString, util.WriteString),
	}
}

// CorePack is the vanilla data pack of MinecraftVersion.
var CorePack = KnownPack{Namespace: key.MinecraftNamespace, ID: "core", Version: MinecraftVersion}

var (
	readProperty, writeProperty   = util.Composite[Property]()
	readKnownPack, writeKnownPack = util.Composite[KnownPack]()
	readProperties                = util.PrefixedArrayReader(readProperty)
	writeProperties               = util.PrefixedArrayWriter(writeProperty)
	readKnownPacks                = util.PrefixedArrayReader(readKnownPack)
	writeKnownPacks               = util.PrefixedArrayWriter(writeKnownPack)
)
