package hwc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/stratoshell/stratoshell/pkg/models"
)

const projectsPath = "/v3/auth/projects"

// ProjectID returns the id of the enabled project named after region.
// It is resolved on every call.
func (c *Client) ProjectID(ctx context.Context, region string) (string, error) {
	if region == "" {
		return "", invalid("region")
	}

	var resp models.ProjectsResponse
	host := c.host(ServiceIdentity, region)
	if err := c.DoJSON(ctx, http.MethodGet, host, projectsPath, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to list projects: %w", err)
	}
	return selectProject(resp.Projects, region)
}

func selectProject(projects []models.Project, region string) (string, error) {
	var enabled []string
	for _, p := range projects {
		if !p.Enabled {
			continue
		}
		if p.Name == region {
			return p.ID, nil
		}
		enabled = append(enabled, p.Name)
	}

	names := "<none>"
	if len(enabled) > 0 {
		names = strings.Join(enabled, ", ")
	}
	return "", fmt.Errorf("no enabled project found for region %q; enabled projects: %s", region, names)
}
