package models

type Flavor struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	VCPUs        string            `json:"vcpus"`
	RAM          uint32            `json:"ram"`
	Disk         string            `json:"disk,omitempty"`
	OSExtraSpecs map[string]string `json:"os_extra_specs,omitempty"`
}

type FlavorListResponse struct {
	Flavors []Flavor `json:"flavors"`
}

type ServerFlavor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	VCPUs string `json:"vcpus,omitempty"`
	RAM   string `json:"ram,omitempty"`
}

type ServerAddress struct {
	Addr    string `json:"addr"`
	Version int    `json:"version"`
	Type    string `json:"OS-EXT-IPS:type,omitempty"`
}

type Server struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	Status           string                     `json:"status"`
	Created          string                     `json:"created,omitempty"`
	Updated          string                     `json:"updated,omitempty"`
	Flavor           *ServerFlavor              `json:"flavor,omitempty"`
	Addresses        map[string][]ServerAddress `json:"addresses,omitempty"`
	Metadata         map[string]string          `json:"metadata,omitempty"`
	AvailabilityZone string                     `json:"OS-EXT-AZ:availability_zone,omitempty"`
}

// PublicAddresses returns every floating address of the server.
func (s Server) PublicAddresses() []string {
	var out []string
	for _, addrs := range s.Addresses {
		for _, a := range addrs {
			if a.Type == "floating" {
				out = append(out, a.Addr)
			}
		}
	}
	return out
}

type ServerListResponse struct {
	Count   int      `json:"count"`
	Servers []Server `json:"servers"`
}

type CreateServerRequest struct {
	Server CreateServerBody `json:"server"`
}

type CreateServerBody struct {
	Name       string         `json:"name"`
	ImageRef   string         `json:"imageRef"`
	FlavorRef  string         `json:"flavorRef"`
	VPCID      string         `json:"vpcid"`
	NICs       []NIC          `json:"nics"`
	RootVolume RootVolume     `json:"root_volume"`
	PublicIP   *ServerEIPSpec `json:"publicip,omitempty"`
}

type NIC struct {
	SubnetID string `json:"subnet_id"`
}

type RootVolume struct {
	VolumeType string `json:"volumetype"`
	Size       uint32 `json:"size"`
}

type ServerEIPSpec struct {
	EIP EIPSpec `json:"eip"`
}

type EIPSpec struct {
	IPType    string        `json:"ip_type"`
	Bandwidth BandwidthSpec `json:"bandwidth"`
}

type BandwidthSpec struct {
	Size       uint32 `json:"size"`
	ShareType  string `json:"share_type"`
	ChargeMode string `json:"charge_mode"`
}

type ServerRef struct {
	ID string `json:"id"`
}

type DeleteServersRequest struct {
	Servers        []ServerRef `json:"servers"`
	DeletePublicIP *bool       `json:"delete_publicip,omitempty"`
	DeleteVolume   *bool       `json:"delete_volume,omitempty"`
}

type StopServersRequest struct {
	OSStop StopServersAction `json:"os-stop"`
}

type StopServersAction struct {
	Servers []ServerRef `json:"servers"`
	Type    string      `json:"type"`
}
