// Package config handles configuration loading for echorelay.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	storage:
//	  data_dir: "${ECHORELAY_DATA_DIR}"
//
// Syntax: ${VAR_NAME}
//
// # Timeout Resolution
//
// The correspondence-map timeout is configured as an amount plus a unit and
// resolved to a single duration after load:
//
//	map:
//	  timeout_amount: 24
//	  timeout_unit: hours
//
// Accepted units: seconds, minutes, hours, days. The default is 24 hours.
package config
