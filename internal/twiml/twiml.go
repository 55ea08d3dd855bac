// Package twiml renders the call-control documents returned to Twilio.
package twiml

import (
	"encoding/xml"
	"fmt"
)

const ContentType = "text/xml"

// Response is a TwiML <Response>. Build it with Bridge or Apology; exactly
// one of the two verbs sets is populated.
type Response struct {
	XMLName xml.Name        `xml:"Response"`
	Connect *ConnectElement `xml:"Connect,omitempty"`
	Say     *SayElement     `xml:"Say,omitempty"`
	Hangup  *HangupElement  `xml:"Hangup,omitempty"`
}

type ConnectElement struct {
	Stream StreamElement `xml:"Stream"`
}

type StreamElement struct {
	URL  string `xml:"url,attr"`
	Name string `xml:"name,attr,omitempty"`
}

type SayElement struct {
	Text string `xml:",chardata"`
}

type HangupElement struct{}

// Bridge connects the call's media to streamURL.
func Bridge(streamURL, name string) Response {
	return Response{
		Connect: &ConnectElement{
			Stream: StreamElement{URL: streamURL, Name: name},
		},
	}
}

// Apology speaks message and ends the call.
func Apology(message string) Response {
	return Response{
		Say:    &SayElement{Text: message},
		Hangup: &HangupElement{},
	}
}

// IsBridge reports whether r carries a stream instruction.
func (r Response) IsBridge() bool { return r.Connect != nil }

// Render serializes r with the XML declaration. Attribute and text values are
// escaped by encoding/xml.
func (r Response) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
