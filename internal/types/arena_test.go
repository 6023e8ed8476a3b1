package types

import (
	"testing"

	"github.com/catapillie/marin/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifySymmetry(t *testing.T) {
	cases := []func(a *Arena) (ID, ID){
		func(a *Arena) (ID, ID) { return a.New(Int{}, 0, token.Span{}), a.New(Int{}, 0, token.Span{}) },
		func(a *Arena) (ID, ID) { return a.New(Int{}, 0, token.Span{}), a.New(Bool{}, 0, token.Span{}) },
		func(a *Arena) (ID, ID) {
			v := a.Fresh(0, token.Span{})
			return v, a.New(Array{Child: a.New(Int{}, 0, token.Span{})}, 0, token.Span{})
		},
	}
	for i, mk := range cases {
		a1, a2 := NewArena(), NewArena()
		x1, y1 := mk(a1)
		x2, y2 := mk(a2)

		err1 := a1.Unify(x1, y1)
		err2 := a2.Unify(y2, x2)

		if err1 == nil {
			assert.NoErrorf(t, err2, "case %d: Unify(x,y) succeeded but Unify(y,x) did not", i)
		} else {
			assert.Errorf(t, err2, "case %d: Unify(x,y) failed but Unify(y,x) did not", i)
		}
	}
}

func TestGeneralizeInstantiateRoundTrip(t *testing.T) {
	a := NewArena()

	// fun(x) => x, at depth 1, generalized at depth 0: forall a. (a) -> a
	v := a.Fresh(1, token.Span{})
	lambda := a.New(Lambda{Args: []ID{v}, Ret: v}, 1, token.Span{})

	scheme := a.Generalize(0, lambda, nil)
	require.Len(t, scheme.Forall, 1)

	inst1, _ := a.Instantiate(scheme, 0, token.Span{})
	inst2, _ := a.Instantiate(scheme, 0, token.Span{})

	lam1 := a.Term(inst1).(Lambda)
	lam2 := a.Term(inst2).(Lambda)
	assert.NotEqual(t, lam1.Args[0], lam2.Args[0], "two instantiations must not share type variables")

	require.NoError(t, a.Unify(lam1.Args[0], lam1.Ret))
	require.NoError(t, a.Unify(a.New(Int{}, 0, token.Span{}), lam1.Args[0]))
	assert.Equal(t, "Int", a.String(lam1.Ret))
}

func TestFindPathCompression(t *testing.T) {
	a := NewArena()
	x := a.Fresh(0, token.Span{})
	y := a.Fresh(0, token.Span{})
	z := a.Fresh(0, token.Span{})
	require.NoError(t, a.Unify(x, y))
	require.NoError(t, a.Unify(y, z))
	assert.Equal(t, a.Find(x), a.Find(z))
}
