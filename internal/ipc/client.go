package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/isim/internal/engine"
	"github.com/1broseidon/isim/internal/ops"
)

// DefaultTimeout bounds one request/response round trip.
const DefaultTimeout = 5 * time.Second

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the daemon listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
	}
}

// SetTimeout changes the round-trip deadline.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// sendRequest sends a request and waits for a response. An ERROR response is
// returned together with a *ResponseError.
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return &resp, &ResponseError{Code: resp.Code, Message: resp.Error}
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetMonitors retrieves RandR monitors of a display ("" for the default).
func (c *Client) GetMonitors(display string) ([]ops.MonitorInfo, error) {
	payload, err := json.Marshal(MonitorsPayload{Display: display})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monitors payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors, Payload: payload})
	if err != nil {
		return nil, err
	}

	var monitors []ops.MonitorInfo
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}

	return monitors, nil
}

// Exec runs one operation in the daemon. A failed operation is reported in
// the returned Result, not as an error; the error covers transport and
// protocol failures only.
func (c *Client) Exec(r ops.Request) (ops.Result, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return ops.Result{}, fmt.Errorf("failed to marshal exec payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandExec, Payload: payload})
	var respErr *ResponseError
	if err != nil && (!errors.As(err, &respErr) || len(resp.Data) == 0) {
		return ops.Result{}, err
	}

	var res ops.Result
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		return ops.Result{}, fmt.Errorf("failed to parse exec result: %w", err)
	}
	return res, nil
}

// Execute is Exec with transport failures folded into a connection-status
// Result. ctx is not consulted; the client timeout bounds the call.
func (c *Client) Execute(_ context.Context, r ops.Request) ops.Result {
	res, err := c.Exec(r)
	if err != nil {
		return ops.Result{
			Code:    int(engine.StatusConnection),
			Status:  engine.StatusConnection.String(),
			Display: r.Display,
			Error:   err.Error(),
		}
	}
	return res
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
