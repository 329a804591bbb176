package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start monitoring.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Cerebro.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop monitoring.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Cerebro.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Cerebro.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleList returns registered module names.
func (c *Client) ModuleList() (*ModuleListResponse, error) {
	var resp ModuleListResponse
	if err := c.client.Call("Cerebro.ModuleList", ModuleListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleEntries returns the entries of one module.
func (c *Client) ModuleEntries(module string) (*ModuleEntriesResponse, error) {
	var resp ModuleEntriesResponse
	if err := c.client.Call("Cerebro.ModuleEntries", ModuleEntriesRequest{Module: module}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleRead reads one entry value.
func (c *Client) ModuleRead(module, entry string) (*ModuleReadResponse, error) {
	var resp ModuleReadResponse
	if err := c.client.Call("Cerebro.ModuleRead", ModuleReadRequest{Module: module, Entry: entry}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleJSON renders a module's JSON aggregate.
func (c *Client) ModuleJSON(module string) (*ModuleJSONResponse, error) {
	var resp ModuleJSONResponse
	if err := c.client.Call("Cerebro.ModuleJSON", ModuleJSONRequest{Module: module}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModuleShell renders a module's shell aggregate.
func (c *Client) ModuleShell(module string) (*ModuleShellResponse, error) {
	var resp ModuleShellResponse
	if err := c.client.Call("Cerebro.ModuleShell", ModuleShellRequest{Module: module}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TriggerList returns the loaded trigger rules.
func (c *Client) TriggerList() (*TriggerListResponse, error) {
	var resp TriggerListResponse
	if err := c.client.Call("Cerebro.TriggerList", TriggerListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrashEmpty empties the trash through the trash module.
func (c *Client) TrashEmpty() (*TrashEmptyResponse, error) {
	var resp TrashEmptyResponse
	if err := c.client.Call("Cerebro.TrashEmpty", TrashEmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryQuery returns persisted metric transitions.
func (c *Client) HistoryQuery(req HistoryQueryRequest) (*HistoryQueryResponse, error) {
	var resp HistoryQueryResponse
	if err := c.client.Call("Cerebro.HistoryQuery", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Cerebro.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Cerebro.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
