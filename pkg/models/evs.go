package models

type VolumeAttachment struct {
	ID         *string `json:"id,omitempty"`
	ServerID   *string `json:"server_id,omitempty"`
	Device     *string `json:"device,omitempty"`
	AttachedAt *string `json:"attached_at,omitempty"`
}

// Volume is an EVS disk. Size and the flags arrive as numbers, booleans or
// strings depending on the region.
type Volume struct {
	ID               *string            `json:"id,omitempty"`
	Name             *string            `json:"name,omitempty"`
	Status           *string            `json:"status,omitempty"`
	Size             FlexUint32         `json:"size"`
	VolumeType       *string            `json:"volume_type,omitempty"`
	AvailabilityZone *string            `json:"availability_zone,omitempty"`
	Bootable         FlexBool           `json:"bootable"`
	Multiattach      FlexBool           `json:"multiattach"`
	CreatedAt        *string            `json:"created_at,omitempty"`
	UpdatedAt        *string            `json:"updated_at,omitempty"`
	Attachments      []VolumeAttachment `json:"attachments,omitempty"`
}

type VolumeListResponse struct {
	Volumes []Volume   `json:"volumes"`
	Count   FlexUint32 `json:"count"`
}
