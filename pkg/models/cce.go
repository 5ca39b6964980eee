package models

// Cluster keeps metadata, spec and status as loosely typed maps; the CCE
// schema varies between cluster versions.
type Cluster struct {
	Kind       string                 `json:"kind,omitempty"`
	APIVersion string                 `json:"apiVersion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Spec       map[string]interface{} `json:"spec,omitempty"`
	Status     map[string]interface{} `json:"status,omitempty"`
}

func (c Cluster) Name() string { return stringAt(c.Metadata, "name") }
func (c Cluster) UID() string  { return stringAt(c.Metadata, "uid") }

func (c Cluster) Phase() string { return stringAt(c.Status, "phase") }

func (c Cluster) Version() string { return stringAt(c.Spec, "version") }

func stringAt(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

type ClusterListResponse struct {
	Kind       string    `json:"kind,omitempty"`
	APIVersion string    `json:"apiVersion,omitempty"`
	Items      []Cluster `json:"items"`
}
