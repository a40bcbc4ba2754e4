// Package client implements the interactive terminal client: it reads
// framed messages from the server and forwards raw text commands typed
// by the player. It holds no game state of its own.
package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"strings"

	"github.com/phuongkuro/Uno-text-based-LAN/deck"
	"github.com/phuongkuro/Uno-text-based-LAN/protocol"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// Client connects to a game server and relays player input
type Client struct {
	addr string

	// Input is the command source, os.Stdin unless overridden
	Input io.Reader
}

// New creates a client for the given server address
func New(addr string) *Client {
	return &Client{addr: addr, Input: os.Stdin}
}

func colorStyle(c deck.Color) *pterm.Style {
	switch c {
	case deck.Red:
		return pterm.FgRed.ToStyle()
	case deck.Yellow:
		return pterm.FgYellow.ToStyle()
	case deck.Green:
		return pterm.FgGreen.ToStyle()
	case deck.Blue:
		return pterm.FgBlue.ToStyle()
	default:
		return pterm.FgMagenta.ToStyle()
	}
}

// RenderHand formats a hand of cards for the terminal
func RenderHand(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = colorStyle(c.Color).Sprint(c.String())
	}
	return strings.Join(parts, " | ")
}

// Run connects, performs the username handshake and pumps messages in
// both directions until the context is cancelled or the connection
// drops.
func (c *Client) Run(ctx context.Context) error {
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.addr)
	}
	defer conn.Close()
	pterm.Info.Println("Connected to server.")

	name := promptUsername()
	if _, err := conn.Write([]byte(name)); err != nil {
		return errors.Wrap(err, "send username failed")
	}

	recvDone := make(chan error, 1)
	go func() { recvDone <- receive(conn) }()

	sendDone := make(chan error, 1)
	go func() { sendDone <- sendLoop(conn, c.Input) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-recvDone:
		return err
	case err := <-sendDone:
		return err
	}
}

// promptUsername asks until the player enters a non-blank name. The
// server applies its own blank/duplicate checks and re-prompts by
// message, so later attempts are typed directly into the send loop.
func promptUsername() string {
	for {
		name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your username").Show()
		name = strings.TrimSpace(name)
		if name != "" {
			return name
		}
		pterm.Warning.Println("Username cannot be blank or only contain spaces.")
	}
}

func receive(conn net.Conn) error {
	for {
		msg, err := protocol.Read(conn)
		if err == io.EOF {
			pterm.Warning.Println("Server closed the connection.")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read message failed")
		}
		switch msg.Type {
		case protocol.Text:
			pterm.Println(msg.Text)
		case protocol.Hand:
			pterm.Info.Println("Your hand of cards:")
			pterm.Println(RenderHand(msg.Hand))
		}
	}
}

// sendLoop forwards each input line to the server as a raw command
func sendLoop(conn net.Conn, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			return errors.Wrap(err, "send command failed")
		}
	}
	return errors.Wrap(scanner.Err(), "read input failed")
}
