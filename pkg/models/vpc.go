package models

type VPC struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	CIDR   string `json:"cidr,omitempty"`
	Status string `json:"status,omitempty"`
}

type VPCListResponse struct {
	VPCs []VPC `json:"vpcs"`
}

type Subnet struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CIDR             string  `json:"cidr"`
	VPCID            string  `json:"vpc_id,omitempty"`
	AvailabilityZone *string `json:"availability_zone,omitempty"`
}

type SubnetListResponse struct {
	Subnets []Subnet `json:"subnets"`
}
