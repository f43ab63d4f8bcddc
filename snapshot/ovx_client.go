package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
)

type OVXConfig struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

func DefaultOVXConfig() OVXConfig {
	return OVXConfig{
		URL:     "http://localhost:8080/status",
		User:    "admin",
		Timeout: 10 * time.Second,
	}
}

// OVXClient fetches snapshots from the control plane's JSON-RPC status endpoint
type OVXClient struct {
	config     OVXConfig
	httpClient *http.Client
}

func NewOVXClient(config OVXConfig) *OVXClient {
	return &OVXClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type tenantParams struct {
	TenantID int `json:"tenantId"`
}

// getPhysicalFlowtable takes an object, an empty one selects every switch
var allSwitches = map[string]interface{}{}

func (c *OVXClient) GetTopology(ctx context.Context, scope Scope) (*Topology, error) {
	var t Topology
	var err error
	if scope.IsPhysical() {
		err = c.call(ctx, "getPhysicalTopology", nil, &t)
	} else {
		err = c.call(ctx, "getVirtualTopology", tenantParams{TenantID: scope.TenantID}, &t)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *OVXClient) GetFlowTables(ctx context.Context, scope Scope) (FlowTables, error) {
	ft := FlowTables{}
	var err error
	if scope.IsPhysical() {
		err = c.call(ctx, "getPhysicalFlowtable", allSwitches, &ft)
	} else {
		err = c.call(ctx, "getVirtualFlowtable", tenantParams{TenantID: scope.TenantID}, &ft)
	}
	if err != nil {
		return nil, err
	}
	return ft, nil
}

func (c *OVXClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: "flowpath", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("%w: %s: marshal request: %v", common.ErrFetch, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrFetch, method, err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	req.SetBasicAuth(c.config.User, c.config.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("OVXClient: %s failed: %v", method, err)
		return fmt.Errorf("%w: %s: %v", common.ErrFetch, method, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: authentication failed: invalid password", common.ErrFetch, method)
	case resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s: gateway timeout", common.ErrFetch, method)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s: unexpected status %d", common.ErrFetch, method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", common.ErrFetch, method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", common.ErrFetch, method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %s: rpc error %d: %s", common.ErrFetch, method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("%w: %s: empty result", common.ErrFetch, method)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%w: %s: decode result: %v", common.ErrFetch, method, err)
	}
	return nil
}
