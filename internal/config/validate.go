package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration correctness. It does not mutate the config;
// normalization has already run by the time this is called.
func (c *Config) Validate() error {
	if c.Hub.URL == "" {
		return fmt.Errorf("hub.url is required")
	}
	u, err := url.Parse(c.Hub.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("hub.url %q is not a valid URL", c.Hub.URL)
	}
	if c.Hub.Token == "" {
		return fmt.Errorf("hub.token is required")
	}

	if c.Source.LogDir == "" {
		return fmt.Errorf("source.log_dir is required")
	}
	if strings.ContainsAny(c.Source.FilePrefix, `/\`) {
		return fmt.Errorf("source.file_prefix %q must not contain path separators", c.Source.FilePrefix)
	}

	if c.Entities.Status.ID == "" {
		return fmt.Errorf("entities.status.id is required")
	}
	if c.Entities.Activity.ID == "" {
		return fmt.Errorf("entities.activity.id is required")
	}

	return nil
}
