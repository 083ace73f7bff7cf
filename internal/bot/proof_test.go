package bot

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseOrderRef(t *testing.T) {
	cases := []struct {
		caption string
		want    int64
		ok      bool
	}{
		{"#12", 12, true},
		{"оплата #7 банк", 7, true},
		{"Заказ: #003", 3, true},
		{"#12 и #13", 12, true},
		{"без номера", 0, false},
		{"", 0, false},
		{"# 12", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseOrderRef(tc.caption)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseOrderRef(%q) = %d, %v; want %d, %v", tc.caption, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSenderLabel(t *testing.T) {
	cases := []struct {
		name string
		user *tele.User
		want string
	}{
		{"nil", nil, "unknown"},
		{"username", &tele.User{Username: "alice"}, "@alice"},
		{"username escaped", &tele.User{Username: "a_b"}, "@a\\_b"},
		{"full name", &tele.User{FirstName: "Иван", LastName: "Петров"}, "Иван Петров"},
		{"first name only", &tele.User{FirstName: "Иван"}, "Иван"},
		{"id fallback", &tele.User{ID: 99}, "99"},
	}
	for _, tc := range cases {
		if got := senderLabel(tc.user); got != tc.want {
			t.Errorf("%s: senderLabel = %q, want %q", tc.name, got, tc.want)
		}
	}
}
