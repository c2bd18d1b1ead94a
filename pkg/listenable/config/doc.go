/*
Package config loads proxy settings from YAML, JSON or TOML.

# Overview

Config wraps a map[string]any with typed accessors that fall back to a
default on missing keys or type mismatches, and Decode copies the whole map
into a tagged struct:

	cfg, err := config.FromFile("listenable.yaml")
	if err != nil {
	    return err
	}

	var settings listenable.Settings
	if err := cfg.Decode(&settings); err != nil {
	    return err
	}

A typical file:

	policy:
	  mode: list
	  keys: [host, port]
	metrics: true
	log_level: debug

# Thread Safety

Config is safe for concurrent reads. The underlying map is not copied, so
modifying it after construction is undefined.
*/
package config
