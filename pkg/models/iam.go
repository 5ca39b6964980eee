package models

// Project is an IAM project. Each region has one project named after it.
type Project struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type ProjectsResponse struct {
	Projects []Project `json:"projects"`
}
