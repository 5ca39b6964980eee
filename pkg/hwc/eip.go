package hwc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/models"
	"go.uber.org/zap"
)

// ListEIPs queries the v3 API and retries against v1 when v3 answers 404 or 405.
// Any other failure is returned as is.
func (c *Client) ListEIPs(
	ctx context.Context,
	region string,
	params ListParams,
) (*models.EIPListResponse, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}
	host := c.host(ServiceElasticIP, region)

	var q query
	q.add("marker", params.Marker)
	q.addUint32("limit", params.Limit)
	q.addUint32("offset", params.Offset)

	var resp models.EIPListResponse
	pathV3 := q.appendTo(fmt.Sprintf("/v3/%s/eip/publicips", projectID))
	err = c.DoJSON(ctx, http.MethodGet, host, pathV3, nil, &resp)
	if err == nil {
		return &resp, nil
	}
	if !HasStatus(err, http.StatusNotFound, http.StatusMethodNotAllowed) {
		return nil, fmt.Errorf("failed to list EIPs: %w", err)
	}

	logger.FromContext(ctx).WarnWithFields("EIP v3 API unavailable, falling back to v1", zap.Error(err))
	resp = models.EIPListResponse{}
	pathV1 := q.appendTo(fmt.Sprintf("/v1/%s/publicips", projectID))
	if err := c.DoJSON(ctx, http.MethodGet, host, pathV1, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list EIPs (v1 fallback): %w", err)
	}
	return &resp, nil
}

// DeleteEIP deletes through v3 and repeats the call on v1 when v3 answers 404 or 405.
func (c *Client) DeleteEIP(ctx context.Context, region, eipID string) (*RawResponse, error) {
	if eipID == "" {
		return nil, invalid("eip id")
	}
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}
	host := c.host(ServiceElasticIP, region)

	pathV3 := fmt.Sprintf("/v3/%s/eip/publicips/%s", projectID, eipID)
	resp, err := c.DoRaw(ctx, http.MethodDelete, host, pathV3, nil)
	if err != nil {
		return nil, err
	}
	if !isVersionMismatch(resp.StatusCode) {
		return resp, nil
	}

	logger.FromContext(ctx).WarnWithFields("EIP v3 delete unavailable, falling back to v1",
		zap.Int("status", resp.StatusCode))
	pathV1 := fmt.Sprintf("/v1/%s/publicips/%s", projectID, eipID)
	return c.DoRaw(ctx, http.MethodDelete, host, pathV1, nil)
}
