package models

type NATGateway struct {
	ID                  *string `json:"id,omitempty"`
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	Spec                *string `json:"spec,omitempty"`
	Status              *string `json:"status,omitempty"`
	RouterID            *string `json:"router_id,omitempty"`
	InternalNetworkID   *string `json:"internal_network_id,omitempty"`
	EnterpriseProjectID *string `json:"enterprise_project_id,omitempty"`
	CreatedAt           *string `json:"created_at,omitempty"`
}

type NATGatewayListResponse struct {
	NATGateways []NATGateway `json:"nat_gateways"`
}
