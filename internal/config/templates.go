package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes the default configuration to path. An existing file
// is kept unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: already exists: %s", path)
		}
	}
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Template mirrors Default.
const Template = `client_name = "snesctl"
# empty attaches the first device listed
device = ""
debug = false

[endpoint]
host = "127.0.0.1"
port = 23074

[transport]
connect_timeout = "5s"
# 0s blocks until a frame arrives
read_timeout = "0s"
write_timeout = "10s"
connect_attempts = 1

[watch]
interval = "500ms"
metrics_addr = ""

[backup]
dir = "backups"
s3_bucket = ""
s3_region = "us-east-1"
s3_endpoint = ""
s3_prefix = "snesctl/"
`
