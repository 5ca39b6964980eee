package hwc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stratoshell/stratoshell/pkg/models"
)

const imageEnvType = "FusionCompute"

func (c *Client) ListImages(
	ctx context.Context,
	region string,
	filters ImageListFilters,
) ([]models.Image, error) {
	if region == "" {
		return nil, invalid("region")
	}

	q := query{"virtual_env_type=" + imageEnvType}
	q.add("visibility", filters.Visibility)
	q.add("__imagetype", filters.ImageType)
	q.add("flavor_id", filters.FlavorID)

	var resp models.ImageListResponse
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceImage, region), q.appendTo("/v2/cloudimages"), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return resp.Images, nil
}

func (c *Client) ListVolumes(
	ctx context.Context,
	region string,
	params ListParams,
) (*models.VolumeListResponse, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var q query
	q.add("marker", params.Marker)
	q.addUint32("limit", params.Limit)
	q.addUint32("offset", params.Offset)
	path := q.appendTo(fmt.Sprintf("/v2/%s/cloudvolumes/detail", projectID))

	var resp models.VolumeListResponse
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceBlockStorage, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	return &resp, nil
}

func (c *Client) ListClusters(ctx context.Context, region string) ([]models.Cluster, error) {
	projectID, err := c.ProjectID(ctx, region)
	if err != nil {
		return nil, err
	}

	var resp models.ClusterListResponse
	path := fmt.Sprintf("/api/v3/projects/%s/clusters", projectID)
	if err := c.DoJSON(ctx, http.MethodGet, c.host(ServiceContainer, region), path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	return resp.Items, nil
}
