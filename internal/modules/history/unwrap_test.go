package history

import (
	"reflect"
	"testing"
)

func TestExtractRows(t *testing.T) {
	t.Run("array passes through", func(t *testing.T) {
		in := []any{1.0, 2.0}
		if got := ExtractRows(in); !reflect.DeepEqual(got, in) {
			t.Errorf("ExtractRows(array) = %v, want %v", got, in)
		}
	})

	t.Run("known keys win in priority order", func(t *testing.T) {
		got := ExtractRows(map[string]any{
			"points": []any{1.0, 2.0},
			"data":   []any{3.0},
		})
		if !reflect.DeepEqual(got, []any{1.0, 2.0}) {
			t.Errorf("ExtractRows() = %v, want points array", got)
		}
	})

	t.Run("later priority key used when earlier absent", func(t *testing.T) {
		got := ExtractRows(map[string]any{
			"meta": "x",
			"data": []any{3.0},
		})
		if !reflect.DeepEqual(got, []any{3.0}) {
			t.Errorf("ExtractRows() = %v, want data array", got)
		}
	})

	t.Run("unknown key with array value is found", func(t *testing.T) {
		got := ExtractRows(map[string]any{"foo": []any{9.0}})
		if !reflect.DeepEqual(got, []any{9.0}) {
			t.Errorf("ExtractRows() = %v, want [9]", got)
		}
	})

	t.Run("known key must hold an array", func(t *testing.T) {
		got := ExtractRows(map[string]any{
			"points": "not an array",
			"rows":   []any{7.0},
		})
		if !reflect.DeepEqual(got, []any{7.0}) {
			t.Errorf("ExtractRows() = %v, want rows array via fallback", got)
		}
	})

	t.Run("empty object degrades to no rows", func(t *testing.T) {
		if got := ExtractRows(map[string]any{}); len(got) != 0 {
			t.Errorf("ExtractRows({}) = %v, want empty", got)
		}
	})

	t.Run("scalars degrade to no rows", func(t *testing.T) {
		if got := ExtractRows("whoops"); len(got) != 0 {
			t.Errorf("ExtractRows(string) = %v, want empty", got)
		}
		if got := ExtractRows(nil); len(got) != 0 {
			t.Errorf("ExtractRows(nil) = %v, want empty", got)
		}
	})
}
