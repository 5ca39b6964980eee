package hwc

import "fmt"

const DefaultDomain = "myhuaweicloud.com"

// Service is the leftmost label of a regional endpoint host.
type Service string

const (
	ServiceCompute       Service = "ecs"
	ServiceNetwork       Service = "vpc"
	ServiceImage         Service = "ims"
	ServiceBlockStorage  Service = "evs"
	ServiceIdentity      Service = "iam"
	ServiceContainer     Service = "cce"
	ServiceObjectStorage Service = "obs"
	ServiceNAT           Service = "nat"
)

// ServiceElasticIP shares the network endpoint.
const ServiceElasticIP = ServiceNetwork

// Endpoint returns service.region.domain.
func Endpoint(service Service, region, domain string) string {
	return fmt.Sprintf("%s.%s.%s", service, region, domain)
}
