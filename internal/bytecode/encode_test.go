package bytecode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleModule() *Module {
	return &Module{
		Consts: []Const{
			{Kind: ConstInt, Int: 42},
			{Kind: ConstString, Str: "hello"},
			{Kind: ConstBundle, Bundle: []Const{{Kind: ConstInt, Int: 1}, {Kind: ConstBool, Bool: true}}},
		},
		Functions: []Function{
			{Offset: 0, Name: "main"},
			{Offset: 12, Name: "helper"},
		},
		Code: []byte{
			byte(OpLoadConst), 0, 0,
			byte(OpLoadConst), 1, 0,
			byte(OpPop),
			byte(OpRet),
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := sampleModule()
	data, err := Encode(m)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(m, decoded))

	reencoded, err := Encode(decoded)
	require.NoError(t, err)
	require.Equal(t, data, reencoded, "serialize -> deserialize -> re-serialize must be byte-identical")
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("not-marin-bytecode-at-all"))
	require.Error(t, err)
}

func TestDisassembleMentionsConstants(t *testing.T) {
	out := Disassemble(sampleModule())
	require.Contains(t, out, "load_const")
	require.Contains(t, out, `"hello"`)
}
