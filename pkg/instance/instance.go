package instance

import "github.com/angelmondragon/hourstay-backend/pkg/env"

// GetID returns the process instance identifier used in startup logs.
func GetID() string {
	if id := env.Get("HOURSTAY_INSTANCE_ID", ""); id != "" {
		return id
	}
	return env.Get("DYNO", "local")
}
