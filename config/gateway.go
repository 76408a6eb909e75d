package config

import (
	"fmt"
)

const (
	ProviderEpayco = "epayco"

	EpaycoCheckoutPath     = "/payment/epayco/checkout/"
	EpaycoResponsePath     = "/payment/epayco/response/"
	EpaycoConfirmationPath = "/payment/epayco/confirmation/"
)

// GatewayConfig represents the configuration structure for a payment gateway.
type GatewayConfig struct {
	DirView   string            `json:"dir_view"`
	Driver    string            `json:"driver"`
	Lang      string            `json:"lang"`
	ScriptURL string            `json:"script_url"`
	Paths     map[string]string `json:"paths"`
}

// GetGatewayConfig retrieves the configuration for a specified gateway.
func GetGatewayConfig(gatewayName string) (GatewayConfig, error) {
	config := map[string]GatewayConfig{
		ProviderEpayco: {
			DirView:   "epayco",
			Driver:    "Epayco",
			Lang:      "es",
			ScriptURL: "https://checkout.epayco.co/checkout.js",
			Paths: map[string]string{
				"checkout":     EpaycoCheckoutPath,
				"response":     EpaycoResponsePath,
				"confirmation": EpaycoConfirmationPath,
			},
		},
	}

	if config, exists := config[gatewayName]; exists {
		return config, nil
	}
	return GatewayConfig{}, fmt.Errorf("gateway %s not found", gatewayName)
}
