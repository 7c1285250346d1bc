package naming

import "testing"

type CartItem struct{}

type box[T any] struct{ v T }

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"Dish":          "dish",
		"CartItem":      "cart_item",
		"HTTPServer":    "http_server",
		"userID":        "user_id",
		"Setmeal2Dish":  "setmeal_2_dish",
		"*menu.Dish":    "menu_dish",
		"already_snake": "already_snake",
		"with-dash and space": "with_dash_and_space",
		"__edge__":      "edge",
	}

	for input, expected := range tests {
		if got := ToSnake(input); got != expected {
			t.Errorf("ToSnake(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestNamespace(t *testing.T) {
	if got := Namespace[*CartItem](); got != "cart_item" {
		t.Errorf("expected cart_item, got %q", got)
	}
	if got := Namespace[CartItem](); got != "cart_item" {
		t.Errorf("expected cart_item, got %q", got)
	}
	if got := Namespace[box[int]](); got != "box" {
		t.Errorf("expected box, got %q", got)
	}
}
