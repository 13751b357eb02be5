package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

func TestViewMarkupEncodesButtons(t *testing.T) {
	view := &dialog.View{}
	view.AddRow(
		dialog.ViewButton{Label: "Dreams", Action: "select", Payload: "42"},
		dialog.ViewButton{Label: "Listen", URL: "https://youtu.be/abc"},
	)
	view.AddRow(dialog.ViewButton{Label: "Back", Action: "back"})

	markup := viewMarkup(view)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)

	sel := markup.InlineKeyboard[0][0]
	require.Equal(t, "Dreams", sel.Text)
	require.Equal(t, callbackKey, sel.Unique)
	require.Equal(t, "select|42", sel.Data)

	link := markup.InlineKeyboard[0][1]
	require.Equal(t, "https://youtu.be/abc", link.URL)
	require.Empty(t, link.Unique)

	back := markup.InlineKeyboard[1][0]
	require.Equal(t, callbackKey, back.Unique)
	require.Equal(t, "back", back.Data)
}

func TestViewMarkupEmptyView(t *testing.T) {
	require.Nil(t, viewMarkup(nil))
	require.Nil(t, viewMarkup(&dialog.View{Text: "no buttons"}))
}

// The payload the markup encodes must decode to the same action and payload
// after a trip through the callback parser.
func TestButtonDataRoundTrip(t *testing.T) {
	cases := []struct {
		action  string
		payload string
	}{
		{"select", "42"},
		{"back", ""},
		{"claim", "7"},
	}
	for _, tc := range cases {
		data := tc.action
		if tc.payload != "" {
			data += "|" + tc.payload
		}
		action, payload := splitButtonData(data)
		require.Equal(t, tc.action, action)
		require.Equal(t, tc.payload, payload)
	}
}

func TestSplitButtonDataKeepsExtraSeparators(t *testing.T) {
	action, payload := splitButtonData("select|a|b")
	require.Equal(t, "select", action)
	require.Equal(t, "a|b", payload)
}
