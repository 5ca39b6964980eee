package hwc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stratoshell/stratoshell/pkg/models"
)

const (
	StopSoft = "SOFT"
	StopHard = "HARD"
)

func (c *Client) ListFlavors(ctx context.Context, region string) ([]models.Flavor, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var resp models.FlavorListResponse
	path := fmt.Sprintf("/v1/%s/cloudservers/flavors?limit=1000", projectID)
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceCompute, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list flavors: %w", err)
	}
	return resp.Flavors, nil
}

func (c *Client) ListServers(
	ctx context.Context,
	region string,
	params ListParams,
) (*models.ServerListResponse, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var q query
	q.add("marker", params.Marker)
	q.addUint32("limit", params.Limit)
	path := q.appendTo(fmt.Sprintf("/v1.1/%s/cloudservers/detail", projectID))

	var resp models.ServerListResponse
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceCompute, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return &resp, nil
}

// CreateServer posts a caller-built JSON body and returns the raw answer.
func (c *Client) CreateServer(ctx context.Context, region string, body []byte) (*RawResponse, error) {
	if len(body) == 0 {
		return nil, invalid("request body")
	}
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1/%s/cloudservers", projectID)
	return c.DoRaw(ctx, http.MethodPost, c.host(ServiceCompute, region), path, body)
}

func (c *Client) DeleteServer(
	ctx context.Context,
	region, serverID string,
	deletePublicIP, deleteVolume bool,
) (*RawResponse, error) {
	if serverID == "" {
		return nil, invalid("server id")
	}
	body, err := json.Marshal(models.DeleteServersRequest{
		Servers:        []models.ServerRef{{ID: serverID}},
		DeletePublicIP: &deletePublicIP,
		DeleteVolume:   &deleteVolume,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode delete request: %w", err)
	}

	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/%s/cloudservers/delete", projectID)
	return c.DoRaw(ctx, http.MethodPost, c.host(ServiceCompute, region), path, body)
}

// StopServer stops one server. stopType is SOFT or HARD; empty means SOFT.
func (c *Client) StopServer(ctx context.Context, region, serverID, stopType string) (*RawResponse, error) {
	if serverID == "" {
		return nil, invalid("server id")
	}
	stopType = strings.ToUpper(strings.TrimSpace(stopType))
	if stopType == "" {
		stopType = StopSoft
	}
	if stopType != StopSoft && stopType != StopHard {
		return nil, fmt.Errorf("%w: stop type must be %s or %s", ErrInvalidRequest, StopSoft, StopHard)
	}

	body, err := json.Marshal(models.StopServersRequest{OSStop: models.StopServersAction{
		Servers: []models.ServerRef{{ID: serverID}},
		Type:    stopType,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stop request: %w", err)
	}

	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v1/%s/cloudservers/action", projectID)
	return c.DoRaw(ctx, http.MethodPost, c.host(ServiceCompute, region), path, body)
}
