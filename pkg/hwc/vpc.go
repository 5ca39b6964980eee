package hwc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stratoshell/stratoshell/pkg/models"
)

func (c *Client) ListVPCs(ctx context.Context, region string) ([]models.VPC, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var resp models.VPCListResponse
	path := fmt.Sprintf("/v1/%s/vpcs", projectID)
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceNetwork, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list VPCs: %w", err)
	}
	return resp.VPCs, nil
}

func (c *Client) ListSubnets(ctx context.Context, region, vpcID string) ([]models.Subnet, error) {
	if vpcID == "" {
		return nil, invalid("vpc id")
	}
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var q query
	q.add("vpc_id", vpcID)
	path := q.appendTo(fmt.Sprintf("/v1/%s/subnets", projectID))

	var resp models.SubnetListResponse
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceNetwork, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list subnets: %w", err)
	}
	return resp.Subnets, nil
}

func (c *Client) ListNATGateways(ctx context.Context, region string) ([]models.NATGateway, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var resp models.NATGatewayListResponse
	path := fmt.Sprintf("/v2/%s/nat_gateways", projectID)
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceNAT, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list NAT gateways: %w", err)
	}
	return resp.NATGateways, nil
}
