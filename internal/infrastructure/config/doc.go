// Package config handles loading and validating Haunt Logic configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of the show layout (devices, props, modes)
//   - Default value handling
//
// Props are fixed for the lifetime of the process. Changing the show means
// editing the file and restarting.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Show.Mode)
package config
