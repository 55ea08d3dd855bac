package twiml

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestBridgeRender(t *testing.T) {
	out, err := Bridge("wss://example/session/abc", "Ultravox Stream").Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := xml.Header + `<Response><Connect><Stream url="wss://example/session/abc" name="Ultravox Stream"></Stream></Connect></Response>`
	if string(out) != want {
		t.Fatalf("Render() = %s\nwant %s", out, want)
	}
}

func TestApologyRender(t *testing.T) {
	out, err := Apology("Sorry, please try again later.").Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := xml.Header + `<Response><Say>Sorry, please try again later.</Say><Hangup></Hangup></Response>`
	if string(out) != want {
		t.Fatalf("Render() = %s\nwant %s", out, want)
	}
}

func TestRenderEscapes(t *testing.T) {
	out, err := Bridge(`wss://example/s?a=1&b="2"`, "<x>").Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	s := string(out)
	if strings.Contains(s, `&b=`) || strings.Contains(s, `<x>`) {
		t.Fatalf("unescaped output: %s", s)
	}

	var parsed Response
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid xml: %v", err)
	}
	if parsed.Connect == nil || parsed.Connect.Stream.URL != `wss://example/s?a=1&b="2"` {
		t.Fatalf("parsed stream = %+v", parsed.Connect)
	}
}

func TestModesAreExclusive(t *testing.T) {
	b := Bridge("wss://x", "n")
	if !b.IsBridge() || b.Say != nil || b.Hangup != nil {
		t.Fatalf("bridge response carries apology verbs: %+v", b)
	}
	a := Apology("bye")
	if a.IsBridge() || a.Say == nil || a.Hangup == nil {
		t.Fatalf("apology response malformed: %+v", a)
	}
}
