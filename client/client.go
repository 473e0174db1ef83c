// Package client implements the TCP client library: it connects, frames
// requests, and decodes the matching response variant for each operation.
package client

import (
	"bufio"
	"fmt"
	"net"

	"kvs/internal/codec"
	"kvs/internal/protocol"
)

// Client holds one TCP connection split into a buffered writer and a
// streaming decoder over a buffered reader.
type Client struct {
	conn   net.Conn
	writer *bufio.Writer
	dec    *codec.Decoder
}

// Connect opens a TCP connection to addr.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: connect to %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		writer: bufio.NewWriter(conn),
		dec:    codec.NewDecoder(bufio.NewReader(conn)),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(req protocol.Request) error {
	b, err := codec.Marshal(req)
	if err != nil {
		return fmt.Errorf("client: encode request: %w", err)
	}
	if _, err := c.writer.Write(b); err != nil {
		return fmt.Errorf("client: write request: %w", err)
	}
	return c.writer.Flush()
}

// Get requests the value for key. ok is false if the key is absent.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	if err := c.send(protocol.NewGet(key)); err != nil {
		return "", false, err
	}
	var resp protocol.ResponseGet
	if _, err := c.dec.Next(&resp); err != nil {
		return "", false, fmt.Errorf("client: decode response: %w", err)
	}
	return resp.Result()
}

// Set stores value under key.
func (c *Client) Set(key, value string) error {
	if err := c.send(protocol.NewSet(key, value)); err != nil {
		return err
	}
	var resp protocol.ResponseSet
	if _, err := c.dec.Next(&resp); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return resp.Result()
}

// Remove deletes key, failing if it does not exist.
func (c *Client) Remove(key string) error {
	if err := c.send(protocol.NewRemove(key)); err != nil {
		return err
	}
	var resp protocol.ResponseRemove
	if _, err := c.dec.Next(&resp); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return resp.Result()
}
