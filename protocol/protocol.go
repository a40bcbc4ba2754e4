// Package protocol implements the framed wire format spoken by the
// server: a 4-byte big-endian length prefix followed by a tagged
// payload. Two payload kinds exist: "TEXT:" carries a UTF-8 string and
// "JSON:" carries a hand of cards.
package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/phuongkuro/Uno-text-based-LAN/deck"
	"github.com/pkg/errors"
)

// MessageType discriminates the payload of a Message
type MessageType int

const (
	Text MessageType = iota
	Hand
)

var messageTypeNames = []string{"Text", "Hand"}

func (mt MessageType) String() string {
	return messageTypeNames[mt]
}

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrTruncated          = errors.New("truncated message")
	ErrFrameTooLarge      = errors.New("frame exceeds maximum size")
)

// MaxFrameSize bounds the allocation a single frame can demand.
const MaxFrameSize = 64 * 1024

var (
	textTag = []byte("TEXT:")
	handTag = []byte("JSON:")
)

// Message is a single server-to-client wire message, decoded once at
// the connection boundary.
type Message struct {
	Type MessageType
	Text string
	Hand []deck.Card
}

// NewText builds a plain text message
func NewText(text string) Message {
	return Message{Type: Text, Text: text}
}

// NewHand builds a hand-of-cards message
func NewHand(cards []deck.Card) Message {
	return Message{Type: Hand, Hand: cards}
}

// wireCard is the JSON shape of a card on the wire
type wireCard struct {
	Color string `json:"color"`
	Rank  string `json:"rank"`
}

func marshalHand(cards []deck.Card) ([]byte, error) {
	wire := make([]wireCard, len(cards))
	for i, c := range cards {
		wire[i] = wireCard{Color: c.Color.String(), Rank: c.Rank.String()}
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, errors.Wrap(err, "marshal hand failed")
	}
	return body, nil
}

func unmarshalHand(body []byte) ([]deck.Card, error) {
	var wire []wireCard
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.Wrap(err, "unmarshal hand failed")
	}
	cards := make([]deck.Card, len(wire))
	for i, w := range wire {
		color, err := deck.ParseColor(w.Color)
		if err != nil {
			return nil, err
		}
		rank, err := deck.ParseRank(w.Rank)
		if err != nil {
			return nil, err
		}
		cards[i] = deck.Card{Color: color, Rank: rank}
	}
	return cards, nil
}

// Write frames and writes one message
func Write(w io.Writer, msg Message) error {
	var payload []byte
	switch msg.Type {
	case Text:
		payload = append(payload, textTag...)
		payload = append(payload, []byte(msg.Text)...)
	case Hand:
		body, err := marshalHand(msg.Hand)
		if err != nil {
			return err
		}
		payload = append(payload, handTag...)
		payload = append(payload, body...)
	default:
		return ErrUnknownMessageType
	}
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "write frame failed")
	}
	return nil
}

// Read reads and decodes one framed message. A clean close before any
// byte arrives surfaces as io.EOF; a close mid-frame is ErrTruncated.
func Read(r io.Reader) (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return Message{}, io.EOF
		}
		return Message{}, ErrTruncated
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return Message{}, ErrFrameTooLarge
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, ErrTruncated
	}

	switch {
	case bytes.HasPrefix(payload, textTag):
		return NewText(string(payload[len(textTag):])), nil
	case bytes.HasPrefix(payload, handTag):
		cards, err := unmarshalHand(payload[len(handTag):])
		if err != nil {
			return Message{}, err
		}
		return NewHand(cards), nil
	default:
		return Message{}, ErrUnknownMessageType
	}
}
