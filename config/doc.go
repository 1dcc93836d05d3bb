// Package config provides configuration loading and validation for svcapp
// services.
//
// It uses Viper to load configuration from a config.yml file, a .env file
// and environment variables, in that order of precedence (later wins).
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("billing", &cfg); err != nil {
//	    return err
//	}
//
// Environment variables map onto nested keys by splitting on underscores:
// HEALTH_CHECK_PORT sets health_check.port.
package config
