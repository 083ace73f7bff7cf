package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		unique  string
		payload string
	}{
		{"\\fproduct|ps_plus_essential", "product", "ps_plus_essential"},
		{"\\fcatalog", "catalog", ""},
		{"\\fvariant|3 мес", "variant", "3 мес"},
		{"plain", "plain", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if unique != tc.unique || payload != tc.payload {
			t.Errorf("ParseCallbackData(%q) = %q, %q; want %q, %q",
				tc.data, unique, payload, tc.unique, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Errorf("nil callback parsed as %q, %q", unique, payload)
	}
}

type cbContext struct {
	tele.Context
	cb *tele.Callback
}

func (c cbContext) Callback() *tele.Callback { return c.cb }

func TestCallbackPayload(t *testing.T) {
	cases := []struct {
		name string
		cb   *tele.Callback
		want string
	}{
		{"split by library", &tele.Callback{Unique: "product", Data: "ps_plus_essential"}, "ps_plus_essential"},
		{"raw data", &tele.Callback{Data: "\\fregion|Турция"}, "Турция"},
		{"no callback", nil, ""},
	}
	for _, tc := range cases {
		if got := CallbackPayload(cbContext{cb: tc.cb}); got != tc.want {
			t.Errorf("%s: payload = %q, want %q", tc.name, got, tc.want)
		}
	}
}
