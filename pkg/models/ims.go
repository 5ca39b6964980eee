package models

import "encoding/json"

// Image is an IMS image. Extension attributes use the double-underscore names.
type Image struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	Visibility      *string  `json:"visibility,omitempty"`
	MinDisk         *uint32  `json:"min_disk,omitempty"`
	MinRAM          *uint32  `json:"min_ram,omitempty"`
	Size            *uint64  `json:"size,omitempty"`
	DiskFormat      *string  `json:"disk_format,omitempty"`
	ContainerFormat *string  `json:"container_format,omitempty"`
	CreatedAt       *string  `json:"created_at,omitempty"`
	UpdatedAt       *string  `json:"updated_at,omitempty"`
	OSVersion       *string  `json:"__os_version,omitempty"`
	OSType          *string  `json:"__os_type,omitempty"`
	Platform        *string  `json:"__platform,omitempty"`
	ImageType       *string  `json:"__imagetype,omitempty"`
	WholeImage      *bool    `json:"__whole_image,omitempty"`
	Protected       *bool    `json:"protected,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// UnmarshalJSON also accepts "whole_image" without the prefix.
func (i *Image) UnmarshalJSON(data []byte) error {
	type imageAlias Image
	aux := struct {
		*imageAlias
		LegacyWholeImage *bool `json:"whole_image"`
	}{imageAlias: (*imageAlias)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if i.WholeImage == nil {
		i.WholeImage = aux.LegacyWholeImage
	}
	return nil
}

type ImageListResponse struct {
	Images []Image `json:"images"`
}
