package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catapillie/marin/internal/bytecode"
)

// callNative(2, 3) through the ordinary calling convention: two arguments
// pushed, then a native function address wrapped in an empty-env callable
// bundle, matching how internal/lower compiles every binary operator but
// &&/|| (§4.5).
func nativeCallCode(addr uint32, args ...bytecode.Const) []byte {
	b := []byte{}
	for i := range args {
		b = append(b, byte(bytecode.OpLoadConst), byte(i), 0)
	}
	var fn [4]byte
	fn[0] = byte(addr)
	fn[1] = byte(addr >> 8)
	fn[2] = byte(addr >> 16)
	fn[3] = byte(addr >> 24)
	b = append(b, byte(bytecode.OpLoadFun))
	b = append(b, fn[:]...)
	b = append(b, byte(bytecode.OpBundle), 0)
	b = append(b, byte(bytecode.OpBundle), 2)
	b = append(b, byte(bytecode.OpCall), byte(len(args)))
	return b
}

func TestNativeAddition(t *testing.T) {
	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 2},
			{Kind: bytecode.ConstInt, Int: 3},
		},
		Code: nativeCallCode(NativeAdd,
			bytecode.Const{Kind: bytecode.ConstInt, Int: 2},
			bytecode.Const{Kind: bytecode.ConstInt, Int: 3}),
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.Equal(t, KindInt, result.Kind)
	require.Equal(t, int64(5), result.Int())
}

func TestNativeComparison(t *testing.T) {
	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 4},
			{Kind: bytecode.ConstInt, Int: 9},
		},
		Code: nativeCallCode(NativeLt,
			bytecode.Const{Kind: bytecode.ConstInt, Int: 4},
			bytecode.Const{Kind: bytecode.ConstInt, Int: 9}),
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.Equal(t, KindBool, result.Kind)
	require.True(t, result.Bool())
}

func TestBundleAndIndex(t *testing.T) {
	code := []byte{
		byte(bytecode.OpLoadConst), 0, 0,
		byte(bytecode.OpLoadConst), 1, 0,
		byte(bytecode.OpLoadConst), 2, 0,
		byte(bytecode.OpBundle), 3,
		byte(bytecode.OpIndex), 1, // peek element 1, bundle persists
		byte(bytecode.OpPopOffset), 1, 0, // discard the bundle beneath
	}
	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 10},
			{Kind: bytecode.ConstInt, Int: 20},
			{Kind: bytecode.ConstInt, Int: 30},
		},
		Code: code,
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.Equal(t, int64(20), result.Int())
}

func TestJumpIfNotSkipsConsequent(t *testing.T) {
	// if false then 1 else 2 (an if/else conditional lowered into a shared
	// exit label the way internal/lower's control.go compiles it).
	code := []byte{
		byte(bytecode.OpLoadConst), 0, 0, // push false
		byte(bytecode.OpJumpIfNot), 0, 0, 0, 0, // -> else (patched below)
		byte(bytecode.OpLoadConst), 1, 0, // consequent: 1
		byte(bytecode.OpJump), 0, 0, 0, 0, // -> exit (patched below)
		// else:
		byte(bytecode.OpLoadConst), 2, 0, // alternative: 2
		// exit:
	}
	elsePos := uint32(16)   // OpLoadConst 2, 0 (the alternative)
	exitPos := uint32(len(code))
	code[4], code[5], code[6], code[7] = byte(elsePos), byte(elsePos>>8), byte(elsePos>>16), byte(elsePos>>24)
	code[12], code[13], code[14], code[15] = byte(exitPos), byte(exitPos>>8), byte(exitPos>>16), byte(exitPos>>24)

	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstBool, Bool: false},
			{Kind: bytecode.ConstInt, Int: 1},
			{Kind: bytecode.ConstInt, Int: 2},
		},
		Code: code,
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Int())
}

// TestCallAndRet runs main straight into a small function compiled right
// after it (matching internal/lower's "main first at offset 0, every
// other buffer concatenated after" layout), with no captured environment.
func TestCallAndRet(t *testing.T) {
	funcCode := []byte{
		byte(bytecode.OpLoadLocal), 0, // the sole argument
		byte(bytecode.OpLoadConst), 0, 0,
		byte(bytecode.OpLoadFun), byte(NativeAdd), byte(NativeAdd >> 8), byte(NativeAdd >> 16), byte(NativeAdd >> 24),
		byte(bytecode.OpBundle), 0,
		byte(bytecode.OpBundle), 2,
		byte(bytecode.OpCall), 2,
		byte(bytecode.OpRet),
	}
	mainCode := []byte{
		byte(bytecode.OpLoadConst), 1, 0, // the argument: 10
		byte(bytecode.OpLoadFun), 0, 0, 0, 0, // patched below to funcOffset
		byte(bytecode.OpBundle), 0, // empty captured env
		byte(bytecode.OpBundle), 2,
		byte(bytecode.OpCall), 1,
	}

	// Execution always starts at offset 0 (§4.4), so an initial jump skips
	// over the function body straight to main; funcOffset then points right
	// after that jump, at the function's own entry.
	const jumpInstrLen = 5 // OpJump + u32
	funcOffset := uint32(jumpInstrLen)
	mainStart := funcOffset + uint32(len(funcCode))
	mainCode[4], mainCode[5], mainCode[6], mainCode[7] =
		byte(funcOffset), byte(funcOffset>>8), byte(funcOffset>>16), byte(funcOffset>>24)

	full := []byte{byte(bytecode.OpJump),
		byte(mainStart), byte(mainStart >> 8), byte(mainStart >> 16), byte(mainStart >> 24)}
	full = append(full, funcCode...)
	full = append(full, mainCode...)

	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 5},  // added inside the function
			{Kind: bytecode.ConstInt, Int: 10}, // the call argument
		},
		Code: full,
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.Equal(t, int64(15), result.Int())
}

func TestStringEquality(t *testing.T) {
	code := nativeCallCode(NativeEq,
		bytecode.Const{Kind: bytecode.ConstString, Str: "hi"},
		bytecode.Const{Kind: bytecode.ConstString, Str: "hi"})
	m := &bytecode.Module{
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstString, Str: "hi"},
			{Kind: bytecode.ConstString, Str: "hi"},
		},
		Code: code,
	}
	result, err := New(m).Run()
	require.NoError(t, err)
	require.True(t, result.Bool())
}

func TestRunRejectsUnbalancedStack(t *testing.T) {
	m := &bytecode.Module{
		Consts: []bytecode.Const{{Kind: bytecode.ConstInt, Int: 1}},
		Code: []byte{
			byte(bytecode.OpLoadConst), 0, 0,
			byte(bytecode.OpLoadConst), 0, 0,
		},
	}
	_, err := New(m).Run()
	require.Error(t, err)
}
