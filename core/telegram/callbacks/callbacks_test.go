package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseRawCallbackData(t *testing.T) {
	// The generic OnCallback endpoint receives the data untouched, form feed
	// prefix included, with Unique left empty.
	cb := &tele.Callback{Data: "\fdlg|select|42"}
	key, payload := Parse(cb)
	if key != "dlg" || payload != "select|42" {
		t.Fatalf("key=%q payload=%q", key, payload)
	}
}

func TestParsePreSplitCallback(t *testing.T) {
	cb := &tele.Callback{Unique: "dlg", Data: "next"}
	key, payload := Parse(cb)
	if key != "dlg" || payload != "next" {
		t.Fatalf("key=%q payload=%q", key, payload)
	}
}

func TestParseNoPayload(t *testing.T) {
	key, payload := Parse(&tele.Callback{Data: "\fdlg"})
	if key != "dlg" || payload != "" {
		t.Fatalf("key=%q payload=%q", key, payload)
	}
}

func TestParseNilCallback(t *testing.T) {
	key, payload := Parse(nil)
	if key != "" || payload != "" {
		t.Fatalf("key=%q payload=%q", key, payload)
	}
}
