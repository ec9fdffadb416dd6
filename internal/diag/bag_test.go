package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneiron-dev/helixql/internal/diag"
)

func TestBagHasErrors(t *testing.T) {
	tests := []struct {
		name string
		push func(b *diag.Bag)
		want bool
	}{
		{"empty", func(b *diag.Bag) {}, false},
		{"warning only", func(b *diag.Bag) {
			b.Warn(diag.CodeMissingReturn, diag.Loc{}, "missing RETURN")
		}, false},
		{"error present", func(b *diag.Bag) {
			b.Warn(diag.CodeMissingReturn, diag.Loc{}, "missing RETURN")
			b.Error(diag.CodeUndeclaredType, diag.Loc{}, "undeclared type Company")
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b diag.Bag
			tt.push(&b)
			assert.Equal(t, tt.want, b.HasErrors())
		})
	}
}

func TestBagSortedOrdersByFileThenOffset(t *testing.T) {
	var b diag.Bag
	b.Error(diag.CodeUnknownField, diag.Loc{File: "b.hx", Start: diag.Pos{Offset: 5}}, "z")
	b.Error(diag.CodeUnknownField, diag.Loc{File: "a.hx", Start: diag.Pos{Offset: 10}}, "y")
	b.Error(diag.CodeUnknownField, diag.Loc{File: "a.hx", Start: diag.Pos{Offset: 2}}, "x")

	got := b.Sorted()
	assert.Equal(t, []string{"x", "y", "z"}, []string{got[0].Message, got[1].Message, got[2].Message})
}
