package models

type PageInfo struct {
	CurrentCount   *uint32 `json:"current_count,omitempty"`
	NextMarker     *string `json:"next_marker,omitempty"`
	PreviousMarker *string `json:"previous_marker,omitempty"`
}

// EIPVnic is the port an elastic IP is bound to.
type EIPVnic struct {
	PrivateIPAddress *string `json:"private_ip_address,omitempty"`
	DeviceID         *string `json:"device_id,omitempty"`
	DeviceOwner      *string `json:"device_owner,omitempty"`
	VPCID            *string `json:"vpc_id,omitempty"`
	PortID           *string `json:"port_id,omitempty"`
	MAC              *string `json:"mac,omitempty"`
	InstanceID       *string `json:"instance_id,omitempty"`
	InstanceType     *string `json:"instance_type,omitempty"`
}

type EIPBandwidth struct {
	ID         *string `json:"id,omitempty"`
	Size       *uint32 `json:"size,omitempty"`
	ShareType  *string `json:"share_type,omitempty"`
	ChargeMode *string `json:"charge_mode,omitempty"`
	Name       *string `json:"name,omitempty"`
}

// PublicIP covers both the v3 and v1 elastic IP representations. The v1 API
// returns a subset of these fields.
type PublicIP struct {
	ID                    *string       `json:"id,omitempty"`
	Alias                 *string       `json:"alias,omitempty"`
	ProjectID             *string       `json:"project_id,omitempty"`
	IPVersion             *uint32       `json:"ip_version,omitempty"`
	PublicIPAddress       *string       `json:"public_ip_address,omitempty"`
	PublicIPv6Address     *string       `json:"public_ipv6_address,omitempty"`
	Status                *string       `json:"status,omitempty"`
	Description           *string       `json:"description,omitempty"`
	Type                  *string       `json:"type,omitempty"`
	CreatedAt             *string       `json:"created_at,omitempty"`
	UpdatedAt             *string       `json:"updated_at,omitempty"`
	LockStatus            *string       `json:"lock_status,omitempty"`
	EnterpriseProjectID   *string       `json:"enterprise_project_id,omitempty"`
	AssociateInstanceType *string       `json:"associate_instance_type,omitempty"`
	AssociateInstanceID   *string       `json:"associate_instance_id,omitempty"`
	PublicIPPoolName      *string       `json:"publicip_pool_name,omitempty"`
	Vnic                  *EIPVnic      `json:"vnic,omitempty"`
	Bandwidth             *EIPBandwidth `json:"bandwidth,omitempty"`
	Tags                  []string      `json:"tags,omitempty"`
}

type EIPListResponse struct {
	PageInfo   *PageInfo  `json:"page_info,omitempty"`
	PublicIPs  []PublicIP `json:"publicips"`
	RequestID  *string    `json:"request_id,omitempty"`
	TotalCount *uint32    `json:"total_count,omitempty"`
}
