package api

import (
	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"

	"github.com/go-playground/validator/v10"
)

// requestValidate checks request bodies before they reach a use case
var requestValidate = validator.New()

// ConfigureRequest is the body of POST /network/interfaces/:name/configure
type ConfigureRequest struct {
	IPAddress  string   `json:"ip_address" validate:"omitempty,ip4_addr"`
	Netmask    string   `json:"netmask" validate:"omitempty,max=15"`
	Gateway    string   `json:"gateway" validate:"omitempty,ip4_addr"`
	DNSServers []string `json:"dns_servers" validate:"omitempty,max=8,dive,ip_addr"`
	IsDHCP     bool     `json:"is_dhcp"`
}

// Config converts the request to the domain configuration
func (r ConfigureRequest) Config() entities.InterfaceConfig {
	return entities.InterfaceConfig{
		IPAddress:  r.IPAddress,
		Netmask:    r.Netmask,
		Gateway:    r.Gateway,
		DNSServers: r.DNSServers,
		DHCP:       r.IsDHCP,
	}
}

// HostnameRequest is the body of POST /hostname
type HostnameRequest struct {
	Hostname string `json:"hostname" validate:"required,max=253"`
}

// ErrorResponse is the error body of every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// InterfaceSummary counts interfaces by kind
type InterfaceSummary struct {
	Total   int `json:"total_interfaces"`
	Public  int `json:"public_interfaces"`
	Virtual int `json:"virtual_interfaces"`
}

// AllInterfacesResponse is the body of GET /network/interfaces/all
type AllInterfacesResponse struct {
	Summary InterfaceSummary            `json:"summary"`
	Public  []entities.NetworkInterface `json:"public_interfaces"`
	Virtual []entities.NetworkInterface `json:"virtual_interfaces"`
}

// ConfigureResponse is the body of a configure request, also on failure
type ConfigureResponse struct {
	Message string                    `json:"message"`
	Result  *entities.ConfigureResult `json:"result"`
	Error   *ErrorResponse            `json:"error,omitempty"`
}

// ArtifactsResponse is the body of GET /network/artifacts
type ArtifactsResponse struct {
	Backend   entities.BackendKind               `json:"config_type"`
	Count     int                                `json:"count"`
	Artifacts []entities.GeneratedConfigArtifact `json:"artifacts"`
}

// ValidateAllResponse is the body of POST /network/artifacts/validate
type ValidateAllResponse struct {
	Valid   bool                        `json:"valid"`
	Reports []entities.ValidationReport `json:"reports"`
}
