package hwc

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stratoshell/stratoshell/pkg/models"
)

// RandomNamePlaceholder asks for a generated server name.
const RandomNamePlaceholder = "ecs-<RANDOM-VALUE>"

const (
	DefaultEIPType             = "5_bgp"
	DefaultBandwidthShareType  = "PER"
	DefaultBandwidthChargeMode = "traffic"
	DefaultBandwidthSize       = 1
)

// CreateServerParams describe a single server with one NIC and an optional EIP.
type CreateServerParams struct {
	Name           string
	ImageID        string
	FlavorID       string
	VPCID          string
	SubnetID       string
	RootVolumeType string
	RootVolumeSize uint32
	AllocateEIP    bool
}

// NormalizeServerName generates ecs-YYYYMMDD-HHMMSS-xxxxxx for an empty name
// or the placeholder, and returns any other name unchanged.
func NormalizeServerName(name string, now time.Time) string {
	if strings.TrimSpace(name) != "" && name != RandomNamePlaceholder {
		return name
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("ecs-%s-%s", now.UTC().Format("20060102-150405"), suffix)
}

// BuildCreateServerBody renders params as a create request body.
func BuildCreateServerBody(params CreateServerParams, now time.Time) ([]byte, error) {
	for _, f := range []struct{ name, value string }{
		{"image id", params.ImageID},
		{"flavor id", params.FlavorID},
		{"vpc id", params.VPCID},
		{"subnet id", params.SubnetID},
		{"root volume type", params.RootVolumeType},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, invalid(f.name)
		}
	}
	if params.RootVolumeSize == 0 {
		return nil, invalid("root volume size")
	}

	var publicIP *models.ServerEIPSpec
	if params.AllocateEIP {
		publicIP = &models.ServerEIPSpec{EIP: models.EIPSpec{
			IPType: DefaultEIPType,
			Bandwidth: models.BandwidthSpec{
				Size:       DefaultBandwidthSize,
				ShareType:  DefaultBandwidthShareType,
				ChargeMode: DefaultBandwidthChargeMode,
			},
		}}
	}

	return json.Marshal(models.CreateServerRequest{Server: models.CreateServerBody{
		Name:       NormalizeServerName(params.Name, now),
		ImageRef:   params.ImageID,
		FlavorRef:  params.FlavorID,
		VPCID:      params.VPCID,
		NICs:       []models.NIC{{SubnetID: params.SubnetID}},
		RootVolume: models.RootVolume{VolumeType: params.RootVolumeType, Size: params.RootVolumeSize},
		PublicIP:   publicIP,
	}})
}
