package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("a_b*c[d`e", MarkdownV1, "")
	if err != nil {
		t.Fatal(err)
	}
	want := `a\_b\*c\[d` + "\\`e"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("a.b!c", MarkdownV2, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != `a\.b\!c` {
		t.Errorf("got %q", got)
	}
}

func TestEscapeMarkdownV2Entities(t *testing.T) {
	got, err := EscapeMarkdown("x_y`z", MarkdownV2, "code")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x_y\\`z" {
		t.Errorf("code entity: got %q", got)
	}
}

func TestEscapeMarkdownUnsupportedVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3, ""); err == nil {
		t.Fatal("expected error")
	}
}
